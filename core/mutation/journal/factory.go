package journal

import (
	"fmt"

	"github.com/bsb-logistics/ganttboard/core/factory"
)

// Config selects the journal backend.
type Config struct {
	// Backend is "jsonl", "sqlite" or "nop".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		switch c.Backend {
		case "sqlite":
			c.Path = "journal.db"
		default:
			c.Path = "journal.jsonl"
		}
	}
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Backend {
	case "jsonl", "sqlite", "nop":
	default:
		return fmt.Errorf("unknown journal backend %s", c.Backend)
	}
	if c.Backend != "nop" && c.Path == "" {
		return fmt.Errorf("journal path is required")
	}
	return nil
}

var registry = factory.NewRegistry[Store]()

func init() {
	_ = registry.Register("nop", func(map[string]any) (Store, error) { return NopStore{}, nil })
	_ = registry.Register("jsonl", func(conf map[string]any) (Store, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		s, err := NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
	_ = registry.Register("sqlite", func(conf map[string]any) (Store, error) {
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
func New(cfg Config) (Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return registry.Create(factory.ModuleConfig{Type: cfg.Backend, Conf: map[string]any{
		"path":         cfg.Path,
		"max_size_mb":  cfg.MaxSizeMB,
		"max_backups":  cfg.MaxBackups,
		"max_age_days": cfg.MaxAgeDays,
	}})
}
