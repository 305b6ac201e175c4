// Package export writes board snapshots for use outside the board.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/bsb-logistics/ganttboard/core/model"
)

var csvHeader = []string{
	"vehicle_id", "plate_number", "trip_id", "trip_start", "trip_end", "full_load",
	"task_id", "task_type", "container_no", "plan_start", "plan_end", "status",
}

// WriteJSON writes the vehicles to w in JSON format.
func WriteJSON(w io.Writer, vehicles []model.Vehicle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(vehicles)
}

// WriteCSV writes one row per task. Trips without tasks get a single row
// with empty task columns.
func WriteCSV(w io.Writer, vehicles []model.Vehicle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, v := range vehicles {
		for _, tr := range v.Trips {
			trip := []string{
				v.ID,
				v.PlateNumber,
				tr.ID,
				tr.StartTime.String(),
				tr.EndTime.String(),
				strconv.FormatBool(tr.Locked()),
			}
			if len(tr.Tasks) == 0 {
				if err := cw.Write(append(trip, "", "", "", "", "", "")); err != nil {
					return err
				}
				continue
			}
			for _, k := range tr.Tasks {
				rec := append(append([]string(nil), trip...),
					k.ID,
					string(k.TaskType),
					deref(k.ContainerNo),
					k.PlanStart.String(),
					k.PlanEnd.String(),
					string(k.Status),
				)
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
