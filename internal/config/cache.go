package config

import (
	"fmt"
	"strings"
)

// CacheConfig points at the directory photos are written to.
type CacheConfig struct {
	Dir string `koanf:"dir"`
}

func (c *CacheConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Cache ---\n")
	b.WriteString(fmt.Sprintf("  dir: %s\n", c.Dir))
	return b.String()
}

func (c *CacheConfig) Validate() error {
	if strings.TrimSpace(c.Dir) == "" {
		return fmt.Errorf("cache directory is not configured (--cache)")
	}
	return nil
}
