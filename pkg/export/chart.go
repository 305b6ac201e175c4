package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/bsb-logistics/ganttboard/core/model"
)

// WriteChartHTML renders planned hours and trip counts per vehicle as a
// horizontal bar chart.
func WriteChartHTML(w io.Writer, vehicles []model.Vehicle, r model.TimeRange) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Board utilisation",
			Subtitle: fmt.Sprintf("%s to %s", r.Start, r.End),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Hours"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Vehicle"}),
	)

	summary := Summarize(vehicles, r)
	labels := make([]string, len(summary))
	hours := make([]opts.BarData, len(summary))
	trips := make([]opts.BarData, len(summary))
	for i, u := range summary {
		labels[i] = u.PlateNumber
		if labels[i] == "" {
			labels[i] = u.VehicleID
		}
		hours[i] = opts.BarData{Value: u.Hours}
		trips[i] = opts.BarData{Value: u.Trips}
	}
	bar.SetXAxis(labels).
		AddSeries("Planned hours", hours).
		AddSeries("Trips", trips)
	bar.XYReversal()

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
