package timeline

import "github.com/bsb-logistics/ganttboard/core/model"

// Bar is an interval projected on the time axis.
type Bar struct {
	ID     string  `json:"id"`
	Offset float64 `json:"offset"`
	Length float64 `json:"length"`
}

// TripBar places a trip and its tasks.
type TripBar struct {
	Bar
	Locked bool      `json:"locked"`
	Tasks  []TaskBar `json:"tasks"`
}

// TaskBar places a task inside its trip's lane.
type TaskBar struct {
	Bar
	TaskType model.TaskType   `json:"taskType"`
	Status   model.TaskStatus `json:"status"`
}

// Row is one vehicle lane. Cross is the position on the non-time axis.
type Row struct {
	VehicleID   string    `json:"vehicleId"`
	PlateNumber string    `json:"plateNumber"`
	Cross       float64   `json:"cross"`
	Thickness   float64   `json:"thickness"`
	Trips       []TripBar `json:"trips"`
}

// Layout is a render-ready projection of the board.
type Layout struct {
	Window      Window      `json:"window"`
	Orientation Orientation `json:"orientation"`
	Length      float64     `json:"length"`
	Rows        []Row       `json:"rows"`
}

// Project lays vehicles out as rows of rowHeight, each lane inset by margin.
// Trips outside the window are kept; callers decide whether to draw them.
func Project(vehicles []model.Vehicle, w Window, o Orientation, rowHeight, margin float64) Layout {
	out := Layout{Window: w, Orientation: o, Length: Width(w), Rows: make([]Row, 0, len(vehicles))}
	thickness := rowHeight - 2*margin
	if thickness < 0 {
		thickness = 0
	}
	for i, v := range vehicles {
		row := Row{
			VehicleID:   v.ID,
			PlateNumber: v.PlateNumber,
			Cross:       float64(i)*rowHeight + margin,
			Thickness:   thickness,
			Trips:       make([]TripBar, 0, len(v.Trips)),
		}
		for _, t := range v.Trips {
			tb := TripBar{
				Bar:    project(t.ID, t.StartTime, t.EndTime, w),
				Locked: t.Locked(),
				Tasks:  make([]TaskBar, 0, len(t.Tasks)),
			}
			for _, k := range t.Tasks {
				tb.Tasks = append(tb.Tasks, TaskBar{
					Bar:      project(k.ID, k.PlanStart, k.PlanEnd, w),
					TaskType: k.TaskType,
					Status:   k.Status,
				})
			}
			row.Trips = append(row.Trips, tb)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func project(id string, start, end model.Timestamp, w Window) Bar {
	off := TimeToOffset(start.Time, w)
	return Bar{ID: id, Offset: off, Length: TimeToOffset(end.Time, w) - off}
}
