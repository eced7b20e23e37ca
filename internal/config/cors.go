package config

import (
	"fmt"
	"strings"
)

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowedOrigins"`
}

func (c *CORSConfig) String() string {
	return fmt.Sprintf("\n--- CORS ---\n  allowedOrigins: %s\n", strings.Join(c.AllowedOrigins, ","))
}

func (c *CORSConfig) Validate() error {
	for _, o := range c.AllowedOrigins {
		if o == "" {
			return fmt.Errorf("empty CORS origin")
		}
	}
	return nil
}
