package journal

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func sampleRecords(base time.Time) []Record {
	return []Record{
		{ID: uuid.NewString(), Timestamp: base, Operation: "add_trip", Outcome: "ok", VehicleID: "V1", TripID: "T1"},
		{ID: uuid.NewString(), Timestamp: base.Add(time.Minute), Operation: "add_task", Outcome: "structural", TripID: "T1", Message: "capacity"},
		{ID: uuid.NewString(), Timestamp: base.Add(2 * time.Minute), Operation: "reassign_vehicle", Outcome: "rejected", VehicleID: "V2", TripID: "T1", Code: 40003},
	}
}

func exercise(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	for _, r := range sampleRecords(base) {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	all, err := store.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 || all[0].Operation != "add_trip" || all[2].Code != 40003 {
		t.Fatalf("unexpected records %#v", all)
	}
	byTrip, _ := store.Query(ctx, Query{TripID: "T1", Outcome: "rejected"})
	if len(byTrip) != 1 || byTrip[0].VehicleID != "V2" {
		t.Fatalf("outcome filter: %#v", byTrip)
	}
	window, _ := store.Query(ctx, Query{Start: base.Add(30 * time.Second), End: base.Add(90 * time.Second)})
	if len(window) != 1 || window[0].Operation != "add_task" {
		t.Fatalf("time filter: %#v", window)
	}
	byVehicle, _ := store.Query(ctx, Query{VehicleID: "V1"})
	if len(byVehicle) != 1 {
		t.Fatalf("vehicle filter: %#v", byVehicle)
	}
}

func TestRotatingJSONLStore(t *testing.T) {
	store, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "nested", "journal.jsonl"), 1, 2, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	exercise(t, store)
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 3, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	big := make([]byte, 200*1024)
	for i := range big {
		big[i] = 'x'
	}
	payload, _ := json.Marshal(string(big))
	for i := 0; i < 8; i++ {
		rec := Record{ID: uuid.NewString(), Timestamp: time.Now(), Operation: "add_trip", Request: payload}
		if err := store.Append(context.Background(), rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	backups, _ := filepath.Glob(filepath.Join(dir, "journal-*.jsonl"))
	if len(backups) == 0 {
		t.Fatalf("expected rotated files")
	}
	out, err := store.Query(context.Background(), Query{Operation: "add_trip"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 8 {
		t.Fatalf("expected 8 records across files got %d", len(out))
	}
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	exercise(t, store)
}

func TestNewFromConfig(t *testing.T) {
	s, err := New(Config{Backend: "nop"})
	if err != nil {
		t.Fatalf("nop: %v", err)
	}
	if _, ok := s.(NopStore); !ok {
		t.Fatalf("expected NopStore got %T", s)
	}
	s, err = New(Config{Backend: "sqlite", Path: filepath.Join(t.TempDir(), "j.db")})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	_ = s.Close()
	if _, err := New(Config{Backend: "kafka"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
