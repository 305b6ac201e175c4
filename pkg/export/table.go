package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/bsb-logistics/ganttboard/core/model"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
	locked = color.New(color.FgHiYellow).SprintFunc()
)

// WriteTable prints one row per trip for terminal display. Vehicles without
// trips get a placeholder row so every board row is listed.
func WriteTable(w io.Writer, vehicles []model.Vehicle) error {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("Vehicle"), bold("Plate"), bold("Driver"), bold("Trip"), bold("Start"), bold("End"), bold("Tasks"), bold("Load"))
	for _, v := range vehicles {
		driver := deref(v.DriverID)
		if len(v.Trips) == 0 {
			tbl.AddRow(v.ID, v.PlateNumber, driver, faint("none"), "", "", "", "")
			continue
		}
		for _, tr := range v.Trips {
			load := "open"
			if tr.Locked() {
				load = locked("full")
			}
			tbl.AddRow(v.ID, v.PlateNumber, driver, tr.ID,
				tr.StartTime.Format("01-02 15:04"),
				tr.EndTime.Format("01-02 15:04"),
				strconv.Itoa(len(tr.Tasks))+"/"+strconv.Itoa(model.MaxTasksPerTrip),
				load)
		}
	}
	_, err := fmt.Fprintln(w, tbl)
	return err
}
