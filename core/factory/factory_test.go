package factory

import (
	"strings"
	"testing"
)

type sample struct {
	Dir  string
	Size int
}

type sampleConf struct {
	Dir  string `json:"dir"`
	Size int    `json:"size"`
}

// Test registry registration and instantiation using Decode.
func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sample]()
	if err := reg.Register("s", func(conf map[string]any) (*sample, error) {
		var c sampleConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &sample{Dir: c.Dir, Size: c.Size}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"dir": "state", "size": 3}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.Dir != "state" || inst.Size != 3 {
		t.Fatalf("unexpected instance %#v", inst)
	}
}

// Environment overrides arrive as strings.
func TestDecode_WeakTypes(t *testing.T) {
	var c sampleConf
	if err := Decode(map[string]any{"size": "12"}, &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Size != 12 {
		t.Fatalf("expected 12 got %d", c.Size)
	}
}

// Test duplicate registration and unknown type errors.
func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("x", func(map[string]any) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", func(map[string]any) (int, error) { return 2, nil }); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.Register("z", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
	_, err := reg.Create(ModuleConfig{Type: "y"})
	if err == nil || !strings.Contains(err.Error(), "known: x") {
		t.Fatalf("expected unknown type error listing x, got %v", err)
	}
	if names := reg.Names(); len(names) != 1 || names[0] != "x" {
		t.Fatalf("names %v", names)
	}
}
