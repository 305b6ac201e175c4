// Package config loads the board configuration from a YAML or JSON file
// with K_ prefixed environment overrides.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/bsb-logistics/ganttboard/core/metrics"
	"github.com/bsb-logistics/ganttboard/core/mutation/journal"
	"github.com/bsb-logistics/ganttboard/core/reference"
	"github.com/bsb-logistics/ganttboard/infra/mqtt"
	"github.com/bsb-logistics/ganttboard/infra/remote"
	"github.com/bsb-logistics/ganttboard/infra/settings"
	"github.com/bsb-logistics/ganttboard/internal/backendsim"
)

var errTraceRate = errors.New("traces_sample_rate must be between 0 and 1")

// Config is the whole board configuration, one section per component.
type Config struct {
	Remote   remote.Config      `json:"remote"`
	Timeline TimelineConfig     `json:"timeline"`
	Settings settings.Config    `json:"settings"`
	Journal  journal.Config     `json:"journal"`
	Metrics  metrics.Config     `json:"metrics"`
	MQTT     mqtt.Config        `json:"mqtt"`
	API      APIConfig          `json:"api"`
	Backend  backendsim.Config  `json:"backend"`
	Sentry   SentryConfig       `json:"sentry"`
	Logging  LoggingConfig      `json:"logging"`
	Drivers  []reference.Driver `json:"drivers"`
}

// Default returns a configuration with every section defaulted, used when
// no file is given.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// Load reads path, applies environment overrides, defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Remote.SetDefaults()
	c.Timeline.SetDefaults()
	c.Settings.SetDefaults()
	c.Journal.SetDefaults()
	c.MQTT.SetDefaults()
	c.API.SetDefaults()
	c.Backend.SetDefaults()
	c.Logging.SetDefaults()
	c.Sentry.SetDefaults()
}

// Validate checks every section and names the first failing one.
func (c Config) Validate() error {
	sections := []struct {
		name string
		v    interface{ Validate() error }
	}{
		{"remote", c.Remote},
		{"timeline", c.Timeline},
		{"settings", c.Settings},
		{"journal", c.Journal},
		{"mqtt", c.MQTT},
		{"api", c.API},
		{"backend", c.Backend},
		{"logging", c.Logging},
		{"sentry", c.Sentry},
	}
	for _, s := range sections {
		if err := s.v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}
