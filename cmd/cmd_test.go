package cmd

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bsb-logistics/ganttboard/core/model"
	"github.com/bsb-logistics/ganttboard/internal/backendsim"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	seed, err := backendsim.DefaultSeed()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	srv := backendsim.NewServer(backendsim.Config{}, backendsim.NewStore(seed), backendsim.WithRegistry(prometheus.NewRegistry()))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "remote:\n  base_url: " + ts.URL + "\nsettings:\n  backend: memory\njournal:\n  backend: nop\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestBoardCommandPrintsTrips(t *testing.T) {
	color.NoColor = true
	path := writeConfig(t)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"board", "-c", path})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	if err := Execute(); err != nil {
		t.Fatalf("board: %v", err)
	}
	got := out.String()
	for _, want := range []string{"PM001", "ABC-123", "2/2", "PM003"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output misses %q:\n%s", want, got)
		}
	}
}

func TestExportCommandWritesFile(t *testing.T) {
	path := writeConfig(t)
	out := filepath.Join(t.TempDir(), "board.csv")
	rootCmd.SetArgs([]string{"export", "-c", path, "-f", "csv", "-o", out})
	t.Cleanup(func() { rootCmd.SetArgs(nil); exportOut = ""; exportFormat = "csv" })

	if err := Execute(); err != nil {
		t.Fatalf("export: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(b), "vehicle_id,plate_number") {
		t.Fatalf("unexpected csv:\n%s", b)
	}
}

func TestWriteExportRejectsUnknownFormat(t *testing.T) {
	if err := writeExport(&bytes.Buffer{}, "xml", nil, model.TimeRange{}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
