// Package reference holds the static lookup data the board renders with:
// the task type catalog and the driver directory.
package reference

import "github.com/bsb-logistics/ganttboard/core/model"

// Fallbacks for task types missing from the catalog.
const (
	FallbackColor       = "#9e9e9e"
	FallbackIcon        = "ellipsis"
	FallbackDescription = "Unknown type"
)

// TaskTypeInfo describes how a task type is drawn.
type TaskTypeInfo struct {
	Type        model.TaskType `json:"type"`
	Color       string         `json:"color"`
	Icon        string         `json:"icon"`
	Description string         `json:"description"`
}

var catalog = []TaskTypeInfo{
	{model.TaskYardFull, "#4caf50", "truck", "Full container yard"},
	{model.TaskClient, "#2196f3", "user", "Client delivery"},
	{model.TaskYardEmpty, "#ff9800", "warehouse", "Empty container yard"},
	{model.TaskEmptyPark, "#9c27b0", "parking", "Empty container park"},
	{model.TaskDriving, "#f44336", "car", "In transit"},
	{model.TaskLifting, "#795548", "crane", "Lifting"},
	{model.TaskWaiting, "#607d8b", "clock", "Waiting"},
	{model.TaskOther, "#9e9e9e", "ellipsis", "Other task"},
}

// TaskTypes returns the catalog in display order.
func TaskTypes() []TaskTypeInfo {
	return append([]TaskTypeInfo(nil), catalog...)
}

// TaskType returns the catalog entry for t, or the fallbacks.
func TaskType(t model.TaskType) TaskTypeInfo {
	for _, info := range catalog {
		if info.Type == t {
			return info
		}
	}
	return TaskTypeInfo{Type: t, Color: FallbackColor, Icon: FallbackIcon, Description: FallbackDescription}
}

func TaskColor(t model.TaskType) string { return TaskType(t).Color }
