package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/bsb-logistics/ganttboard/core/model"
)

var base = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func board() []model.Vehicle {
	cont := "CONT001"
	return []model.Vehicle{
		{ID: "PM001", PlateNumber: "ABC-123", Trips: []model.Trip{
			{ID: "T1", VehicleID: "PM001", StartTime: model.At(base), EndTime: model.At(base.Add(2 * time.Hour)), Tasks: []model.Task{
				{ID: "K1", TripID: "T1", ContainerNo: &cont, TaskType: model.TaskClient, PlanStart: model.At(base), PlanEnd: model.At(base.Add(time.Hour)), Status: model.StatusPending},
				{ID: "K2", TripID: "T1", TaskType: model.TaskEmptyPark, PlanStart: model.At(base.Add(time.Hour)), PlanEnd: model.At(base.Add(2 * time.Hour)), Status: model.StatusPending},
			}},
			{ID: "T2", VehicleID: "PM001", StartTime: model.At(base.Add(4 * time.Hour)), EndTime: model.At(base.Add(8 * time.Hour)), FullLoad: true},
		}},
		{ID: "PM002", PlateNumber: "DEF-456"},
	}
}

func dayRange() model.TimeRange {
	return model.TimeRange{Start: model.At(base), End: model.At(base.Add(24 * time.Hour))}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, board()); err != nil {
		t.Fatalf("csv: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header and 3 rows, got %d", len(rows))
	}
	if rows[1][8] != "CONT001" || rows[1][3] != "2025-03-10 08:00:00" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if rows[3][2] != "T2" || rows[3][5] != "true" || rows[3][6] != "" {
		t.Fatalf("unexpected empty trip row %v", rows[3])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, board()); err != nil {
		t.Fatalf("json: %v", err)
	}
	var out []model.Vehicle
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 || !out[0].Trips[1].Locked() {
		t.Fatalf("unexpected decode %#v", out)
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize(board(), dayRange())
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	u := got[0]
	if u.Trips != 2 || u.Tasks != 2 || u.Hours != 6 || u.MeanHours != 3 {
		t.Fatalf("unexpected summary %#v", u)
	}
	if math.Abs(u.StdDevHours-math.Sqrt2) > 1e-9 {
		t.Fatalf("stddev %v", u.StdDevHours)
	}
	if math.Abs(u.Share-0.25) > 1e-9 {
		t.Fatalf("share %v", u.Share)
	}
	if got[1].Hours != 0 || got[1].StdDevHours != 0 {
		t.Fatalf("empty vehicle %#v", got[1])
	}
}

func TestWriteChartHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteChartHTML(&buf, board(), dayRange()); err != nil {
		t.Fatalf("chart: %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, "Board utilisation") || !strings.Contains(html, "ABC-123") {
		t.Fatalf("chart missing content")
	}
}

func TestWriteTable(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	if err := WriteTable(&buf, board()); err != nil {
		t.Fatalf("table: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 rows, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "03-10 08:00") || !strings.Contains(lines[1], "2/2") {
		t.Fatalf("unexpected trip row %q", lines[1])
	}
	if !strings.Contains(lines[2], "full") {
		t.Fatalf("locked trip not marked: %q", lines[2])
	}
	if !strings.Contains(lines[3], "DEF-456") || !strings.Contains(lines[3], "none") {
		t.Fatalf("empty vehicle row missing: %q", lines[3])
	}
}
