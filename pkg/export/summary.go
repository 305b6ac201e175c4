package export

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/bsb-logistics/ganttboard/core/model"
)

// Utilisation summarises the planned trips of one vehicle.
type Utilisation struct {
	VehicleID   string  `json:"vehicle_id"`
	PlateNumber string  `json:"plate_number"`
	Trips       int     `json:"trips"`
	Tasks       int     `json:"tasks"`
	Hours       float64 `json:"hours"`
	MeanHours   float64 `json:"mean_hours"`
	StdDevHours float64 `json:"stddev_hours"`
	// Share is Hours divided by the span of the window.
	Share float64 `json:"share"`
}

// Summarize computes per-vehicle utilisation against r. Trips are counted
// in full even when they extend beyond r.
func Summarize(vehicles []model.Vehicle, r model.TimeRange) []Utilisation {
	span := r.End.Sub(r.Start.Time).Hours()
	out := make([]Utilisation, 0, len(vehicles))
	for _, v := range vehicles {
		u := Utilisation{VehicleID: v.ID, PlateNumber: v.PlateNumber, Trips: len(v.Trips)}
		hours := make([]float64, len(v.Trips))
		for i, tr := range v.Trips {
			hours[i] = tr.Hours()
			u.Tasks += len(tr.Tasks)
		}
		if len(hours) > 0 {
			u.Hours = floats.Sum(hours)
			u.MeanHours = stat.Mean(hours, nil)
		}
		if len(hours) > 1 {
			u.StdDevHours = stat.StdDev(hours, nil)
		}
		if span > 0 {
			u.Share = u.Hours / span
		}
		out = append(out, u)
	}
	return out
}
