package config

import (
	"fmt"
	"strings"
)

const defaultSeedCount = 10

type SeedConfig struct {
	Enabled bool `koanf:"enabled"`
	Count   int  `koanf:"count"`
}

// String returns a string representation of the seed configuration.
func (c *SeedConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Seed ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  count: %d\n", c.Count))
	return b.String()
}

func (c *SeedConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Count < 0 {
		return fmt.Errorf("seed count must not be negative: %d", c.Count)
	}
	if c.Count == 0 {
		c.Count = defaultSeedCount
	}
	return nil
}
