package config

import (
	"fmt"
	"net"
)

// APIConfig configures the local board API.
type APIConfig struct {
	Address string `json:"address"`
	// Token guards the journal endpoint when set.
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}

// Validate checks mandatory fields.
func (c APIConfig) Validate() error {
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("api address %q: %w", c.Address, err)
	}
	return nil
}
