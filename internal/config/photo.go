package config

import (
	"fmt"
	"strings"
)

const (
	BackendFilesystem = "filesystem"
	BackendMemory     = "memory"
	BackendS3         = "s3"
)

type PhotoConfig struct {
	Backend        string `koanf:"backend"`
	MaxUploadBytes int64  `koanf:"maxUploadBytes"`
	// Cleanup deletes photos of deleted items and replaced photos.
	Cleanup       bool `koanf:"cleanup"`
	JanitorBuffer int  `koanf:"janitorBuffer"`
	S3            struct {
		Bucket string `koanf:"bucket"`
		Prefix string `koanf:"prefix"`
		Region string `koanf:"region"`
	} `koanf:"s3"`
}

func (c *PhotoConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Photo ---\n")
	b.WriteString(fmt.Sprintf("  backend: %s\n", c.Backend))
	b.WriteString(fmt.Sprintf("  maxUploadBytes: %d\n", c.MaxUploadBytes))
	b.WriteString(fmt.Sprintf("  cleanup: %t\n", c.Cleanup))
	b.WriteString(fmt.Sprintf("  janitorBuffer: %d\n", c.JanitorBuffer))
	if c.Backend == BackendS3 {
		b.WriteString(fmt.Sprintf("  s3: bucket=%s prefix=%s region=%s\n", c.S3.Bucket, c.S3.Prefix, c.S3.Region))
	}
	return b.String()
}

func (c *PhotoConfig) Validate() error {
	switch c.Backend {
	case BackendFilesystem, BackendMemory:
	case BackendS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("photo backend is s3 but photo.s3.bucket is not configured")
		}
	default:
		return fmt.Errorf("unknown photo backend: %q", c.Backend)
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("invalid photo max upload size: %d", c.MaxUploadBytes)
	}
	if c.JanitorBuffer <= 0 {
		return fmt.Errorf("invalid photo janitor buffer: %d", c.JanitorBuffer)
	}
	return nil
}
