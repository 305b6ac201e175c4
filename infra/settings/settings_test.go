package settings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	coresettings "github.com/bsb-logistics/ganttboard/core/settings"
)

func exerciseStore(t *testing.T, s coresettings.Store) {
	t.Helper()
	ctx := context.Background()
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, coresettings.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Put(ctx, coresettings.Key, []byte(`{"rowHeight":72}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, coresettings.Key, []byte(`{"rowHeight":90}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	b, err := s.Get(ctx, coresettings.Key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(b) != `{"rowHeight":90}` {
		t.Fatalf("unexpected value %s", b)
	}
}

func TestDiskvStore(t *testing.T) {
	exerciseStore(t, NewDiskvStore(t.TempDir()))
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestServiceOverDiskv(t *testing.T) {
	dir := t.TempDir()
	svc := coresettings.NewService(NewDiskvStore(dir), nil)
	if _, err := svc.Update(context.Background(), func(s *coresettings.Settings) { s.RowHeight = 48 }); err != nil {
		t.Fatalf("update: %v", err)
	}
	st, err := coresettings.NewService(NewDiskvStore(dir), nil).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st.RowHeight != 48 || st.TaskMargin != 4 {
		t.Fatalf("unexpected settings %#v", st)
	}
}

func TestNewFromConfig(t *testing.T) {
	for _, backend := range []string{"memory", "diskv", "sqlite"} {
		cfg := Config{Backend: backend}
		if backend != "memory" {
			cfg.Path = filepath.Join(t.TempDir(), "store")
		}
		s, err := New(cfg)
		if err != nil {
			t.Fatalf("%s: %v", backend, err)
		}
		exerciseStore(t, s)
	}
	if _, err := New(Config{Backend: "redis"}); err == nil {
		t.Fatal("expected unknown backend error")
	}
}
