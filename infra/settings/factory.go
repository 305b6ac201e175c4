package settings

import (
	"fmt"

	"github.com/bsb-logistics/ganttboard/core/factory"
	coresettings "github.com/bsb-logistics/ganttboard/core/settings"
)

// Config selects the settings backend.
type Config struct {
	// Backend is "diskv", "sqlite" or "memory".
	Backend string `json:"backend"`
	// Path is a directory for diskv and a database file for sqlite.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "diskv"
	}
	if c.Path == "" {
		switch c.Backend {
		case "sqlite":
			c.Path = "settings.db"
		default:
			c.Path = ".ganttboard"
		}
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Backend {
	case "diskv", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown settings backend %s", c.Backend)
	}
	if c.Backend != "memory" && c.Path == "" {
		return fmt.Errorf("settings path is required")
	}
	return nil
}

var registry = factory.NewRegistry[coresettings.Store]()

func init() {
	_ = registry.Register("memory", func(map[string]any) (coresettings.Store, error) {
		return coresettings.NewMemoryStore(), nil
	})
	_ = registry.Register("diskv", func(conf map[string]any) (coresettings.Store, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewDiskvStore(c.Path), nil
	})
	_ = registry.Register("sqlite", func(conf map[string]any) (coresettings.Store, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		s, err := NewSQLiteStore(c.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

// New opens the store selected by cfg.
func New(cfg Config) (coresettings.Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return registry.Create(factory.ModuleConfig{Type: cfg.Backend, Conf: map[string]any{"path": cfg.Path}})
}
