// Package config loads the inventory service configuration.
package config

import "strings"

type Config struct {
	HTTPServer HTTPConfig     `koanf:"server"`
	Cache      CacheConfig    `koanf:"cache"`
	Photo      PhotoConfig    `koanf:"photo"`
	CORS       CORSConfig     `koanf:"cors"`
	Log        LogConfig      `koanf:"log"`
	PProf      PProfConfig    `koanf:"pprof"`
	Shutdown   ShutdownConfig `koanf:"shutdown"`
}

type section interface {
	Validate() error
	String() string
}

func (c *Config) sections() []section {
	return []section{&c.HTTPServer, &c.Cache, &c.Photo, &c.CORS, &c.Log, &c.PProf, &c.Shutdown}
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	for _, s := range c.sections() {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) String() string {
	var b strings.Builder
	for _, s := range c.sections() {
		b.WriteString(s.String())
	}
	return b.String()
}
