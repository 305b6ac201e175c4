package model

import (
	"encoding/json"
	"fmt"
)

// TaskType classifies the work carried out by a task.
type TaskType string

const (
	TaskYardFull  TaskType = "Yard(F)"
	TaskClient    TaskType = "Client"
	TaskYardEmpty TaskType = "Yard(E)"
	TaskEmptyPark TaskType = "Empty Park"
	// TaskDriving keeps the persistence service's spelling.
	TaskDriving TaskType = "Drving"
	TaskLifting TaskType = "Lifting"
	TaskWaiting TaskType = "Waiting"
	TaskOther   TaskType = "Other"
)

// TaskTypes lists every task type in display order.
var TaskTypes = []TaskType{
	TaskYardFull, TaskClient, TaskYardEmpty, TaskEmptyPark,
	TaskDriving, TaskLifting, TaskWaiting, TaskOther,
}

// ParseTaskType validates a wire label.
func ParseTaskType(s string) (TaskType, error) {
	for _, tt := range TaskTypes {
		if string(tt) == s {
			return tt, nil
		}
	}
	return "", fmt.Errorf("unknown task type %q", s)
}

// Valid returns true for members of the closed set.
func (t TaskType) Valid() bool {
	_, err := ParseTaskType(string(t))
	return err == nil
}

func (t *TaskType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	tt, err := ParseTaskType(s)
	if err != nil {
		return err
	}
	*t = tt
	return nil
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusOngoing   TaskStatus = "ongoing"
	StatusCompleted TaskStatus = "completed"
	// StatusTBC marks a task waiting for confirmation.
	StatusTBC TaskStatus = "tbc"
)

// CanTransition reports whether moving from s to next is allowed.
// Completed is terminal; tbc sits beside pending and ongoing.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusOngoing || next == StatusTBC
	case StatusOngoing:
		return next == StatusCompleted || next == StatusTBC
	case StatusTBC:
		return next == StatusPending || next == StatusOngoing
	default:
		return false
	}
}

func (s *TaskStatus) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch TaskStatus(v) {
	case StatusPending, StatusOngoing, StatusCompleted, StatusTBC:
		*s = TaskStatus(v)
	case "":
		*s = StatusPending
	default:
		return fmt.Errorf("unknown task status %q", v)
	}
	return nil
}
