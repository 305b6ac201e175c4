package model

import (
	"fmt"
	"strings"
	"time"
)

// Container is the order-side reference data a task points at.
type Container struct {
	CtnNumber          string `json:"ctnNumber" yaml:"ctnNumber"`
	LogisticsStatus    string `json:"logisticsStatus" yaml:"logisticsStatus"`
	FullClientName     string `json:"fullClientName" yaml:"fullClientName"`
	FullDeliverAddress string `json:"fullDeliverAddress" yaml:"fullDeliverAddress"`
	DeliverType        string `json:"deliverType" yaml:"deliverType"`
	Terminal           string `json:"terminal" yaml:"terminal"`
	EmptyPark          string `json:"emptyPark" yaml:"emptyPark"`
	CtnType            string `json:"ctnType" yaml:"ctnType"`
	CtnWeight          string `json:"ctnWeight" yaml:"ctnWeight"`
	ShippingLine       string `json:"shippingLine,omitempty" yaml:"shippingLine"`
	Remark             string `json:"remark,omitempty" yaml:"remark"`

	// Deadlines and plans are calendar days, optionally followed by a time.
	LastFree           string `json:"lastFree" yaml:"lastFree"`
	LastDention        string `json:"lastDention" yaml:"lastDention"`
	RequestDeliverDate string `json:"RequestDeliverDate" yaml:"requestDeliverDate"`
	PlanPickUpDate     string `json:"planPickUpDate" yaml:"planPickUpDate"`
	PlanDeliverDate    string `json:"planDeliverDate" yaml:"planDeliverDate"`
	PlanDehireDate     string `json:"planDehireDate" yaml:"planDehireDate"`
}

// StatusNewOrder is the logistics status of a container not yet moved.
const StatusNewOrder = "新订单"

// PickupAddress derives where the next task picks the container up.
func (c Container) PickupAddress() string {
	switch c.LogisticsStatus {
	case StatusNewOrder:
		return c.Terminal
	case string(TaskYardFull):
		return fmt.Sprintf("%s - Ready to Deliver", c.FullClientName)
	case string(TaskClient):
		return c.FullDeliverAddress
	case string(TaskYardEmpty):
		return fmt.Sprintf("%s - Ready to De-hire", c.FullClientName)
	case string(TaskEmptyPark):
		return c.EmptyPark
	default:
		return c.Terminal
	}
}

// DeliveryAddress derives the destination of a task of type tt.
func (c Container) DeliveryAddress(tt TaskType) string {
	switch tt {
	case TaskYardFull:
		return fmt.Sprintf("%s - Ready to Deliver", c.FullClientName)
	case TaskClient:
		return c.FullDeliverAddress
	case TaskYardEmpty:
		return fmt.Sprintf("%s - Ready to De-hire", c.FullClientName)
	case TaskEmptyPark:
		return c.EmptyPark
	case TaskDriving:
		return "In Transit"
	case TaskLifting:
		return "Lifting Location"
	case TaskWaiting:
		return "Waiting Area"
	case TaskOther:
		return "Other Location"
	default:
		return c.FullDeliverAddress
	}
}

// ContainerFilter narrows the order list. Empty fields match everything.
// Search matches the container number or the client name, ignoring case.
type ContainerFilter struct {
	Search          string `json:"search,omitempty"`
	LogisticsStatus string `json:"logisticsStatus,omitempty"`
	DeliverType     string `json:"deliverType,omitempty"`
	Terminal        string `json:"terminal,omitempty"`
}

// Match reports whether c passes every set criterion.
func (f ContainerFilter) Match(c Container) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(c.CtnNumber), q) && !strings.Contains(strings.ToLower(c.FullClientName), q) {
			return false
		}
	}
	if f.LogisticsStatus != "" && c.LogisticsStatus != f.LogisticsStatus {
		return false
	}
	if f.DeliverType != "" && c.DeliverType != f.DeliverType {
		return false
	}
	if f.Terminal != "" && c.Terminal != f.Terminal {
		return false
	}
	return true
}

// DayLayout is the layout of a calendar day on the order desk.
const DayLayout = "2006-01-02"

// Deadline names one of the daily lists of containers that need a move.
type Deadline string

const (
	// DeadlineLastPickup lists containers on their last free day whose
	// pickup is unplanned or planned too late.
	DeadlineLastPickup Deadline = "last_pickup"
	// DeadlineLastDehire lists containers on their last detention day whose
	// dehire is unplanned or planned too late.
	DeadlineLastDehire Deadline = "last_dehire"
	// DeadlineTodayDeliver lists containers the client wants delivered that
	// day whose delivery is unplanned or planned for another day.
	DeadlineTodayDeliver Deadline = "today_deliver"
)

// Deadlines lists every deadline kind.
var Deadlines = []Deadline{DeadlineLastPickup, DeadlineLastDehire, DeadlineTodayDeliver}

// ParseDeadline checks s against the known deadline kinds.
func ParseDeadline(s string) (Deadline, error) {
	for _, d := range Deadlines {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown deadline %q", s)
}

// ParseDay checks that s is a calendar day.
func ParseDay(s string) (string, error) {
	if _, err := time.Parse(DayLayout, s); err != nil {
		return "", fmt.Errorf("invalid day %q", s)
	}
	return s, nil
}

// Due reports whether c belongs on the d list of day.
func (c Container) Due(d Deadline, day string) bool {
	switch d {
	case DeadlineLastPickup:
		due := dayOf(c.LastFree)
		return due == day && (dayOf(c.PlanPickUpDate) == "" || dayOf(c.PlanPickUpDate) > due)
	case DeadlineLastDehire:
		due := dayOf(c.LastDention)
		return due == day && (dayOf(c.PlanDehireDate) == "" || dayOf(c.PlanDehireDate) > due)
	case DeadlineTodayDeliver:
		due := dayOf(c.RequestDeliverDate)
		return due == day && dayOf(c.PlanDeliverDate) != due
	default:
		return false
	}
}

func dayOf(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > len(DayLayout) {
		s = s[:len(DayLayout)]
	}
	return s
}

// DefaultPlanLength is the span of a planned task without an explicit end.
const DefaultPlanLength = time.Hour

// PlanRequest asks for a task proposal built from an order container.
type PlanRequest struct {
	TripID      string     `json:"tripId,omitempty"`
	VehicleID   string     `json:"vehicleId,omitempty"`
	ContainerNo string     `json:"containerNo"`
	TaskType    TaskType   `json:"taskType"`
	PlanStart   *Timestamp `json:"planStart,omitempty"`
	PlanEnd     *Timestamp `json:"planEnd,omitempty"`
}

// Validate checks the request before it is sent.
func (r PlanRequest) Validate() error {
	if r.ContainerNo == "" {
		return fmt.Errorf("container number is required")
	}
	if !r.TaskType.Valid() {
		return fmt.Errorf("unknown task type %q", r.TaskType)
	}
	if r.PlanStart != nil && r.PlanEnd != nil {
		return TimeRange{Start: *r.PlanStart, End: *r.PlanEnd}.Validate()
	}
	return nil
}

// Plan builds the pending task that moves c as r describes. A missing start
// is the top of the hour of now; a missing end follows the start by
// DefaultPlanLength.
func (c Container) Plan(r PlanRequest, now Timestamp, id string) Task {
	start := At(now.Truncate(time.Hour))
	if r.PlanStart != nil {
		start = *r.PlanStart
	}
	end := At(start.Add(DefaultPlanLength))
	if r.PlanEnd != nil {
		end = *r.PlanEnd
	}
	no := c.CtnNumber
	return Task{
		ID:              id,
		TripID:          r.TripID,
		ContainerNo:     &no,
		TaskType:        r.TaskType,
		PlanStart:       start,
		PlanEnd:         end,
		StartAddress:    c.PickupAddress(),
		EndAddress:      c.DeliveryAddress(r.TaskType),
		Status:          StatusPending,
		ContainerWeight: nonEmpty(c.CtnWeight),
		ContainerType:   nonEmpty(c.CtnType),
	}
}

// Draft returns the draft that creates k in its trip.
func (k Task) Draft() TaskDraft {
	start, end := k.PlanStart, k.PlanEnd
	return TaskDraft{
		TripID:      k.TripID,
		ContainerNo: k.ContainerNo,
		TaskType:    k.TaskType,
		PlanStart:   &start,
		PlanEnd:     &end,
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
