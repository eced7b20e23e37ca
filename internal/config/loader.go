package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix         = "INVENTORY_"
	defaultEnvFile    = ".env"
	defaultConfigFile = "config.yaml"
	corsOriginsKey    = "cors.allowedOrigins"
)

// defaults is the lowest configuration layer. Host, port and cache directory
// have no default: they must be given.
func defaults() map[string]any {
	return map[string]any{
		"server.host":               "",
		"server.port":               0,
		"server.maxHeaderBytes":     1 << 20,
		"server.timeout.read":       15 * time.Second,
		"server.timeout.write":      30 * time.Second,
		"server.timeout.idle":       60 * time.Second,
		"server.timeout.readHeader": 5 * time.Second,
		"cache.dir":                 "",
		"photo.backend":             BackendFilesystem,
		"photo.maxUploadBytes":      int64(10 << 20),
		"photo.cleanup":             true,
		"photo.janitorBuffer":       128,
		"photo.s3.bucket":           "",
		"photo.s3.prefix":           "",
		"photo.s3.region":           "",
		corsOriginsKey:              []string{},
		"log.level":                 "info",
		"pprof.enabled":             false,
		"pprof.addr":                "localhost:6060",
		"shutdown.timeout":          10 * time.Second,
	}
}

// Load builds the configuration from, in increasing priority: defaults,
// the YAML config file, the .env file, INVENTORY_* environment variables and
// the command line flags in args.
func Load(args []string) (*Config, error) {
	flags, configFile, err := parseFlags(args)
	if err != nil {
		return nil, err
	}

	// Create a new Koanf instance
	k := koanf.New(".")

	// 0. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}
	transform := keyTransformer(k.Keys())

	// 1. Load configuration from yaml file
	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN: error loading YAML config file '%s': %v", configFile, err)
		}
	}

	// 2. Load environment variables from .env file
	if envFileMap, err := godotenv.Read(defaultEnvFile); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			if !strings.HasPrefix(strings.ToUpper(key), envPrefix) {
				continue
			}
			envMap[transform(key)] = value
		}
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	// 3. Load environment variables from the system
	if err := k.Load(env.Provider(envPrefix, ".", transform), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	// environment layers carry the origin list as one comma-separated string
	if origins, ok := k.Get(corsOriginsKey).(string); ok {
		if err := k.Load(confmap.Provider(map[string]any{corsOriginsKey: splitList(origins)}, "."), nil); err != nil {
			return nil, fmt.Errorf("error loading CORS origins: %w", err)
		}
	}

	// 4. Command line flags, the highest priority
	if err := k.Load(confmap.Provider(flags, "."), nil); err != nil {
		return nil, fmt.Errorf("error loading command line flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// parseFlags reads -h/--host, -p/--port, -c/--cache and --config.
// Only flags present on the command line are returned, keyed by config key.
func parseFlags(args []string) (map[string]any, string, error) {
	fs := flag.NewFlagSet("inventory_service", flag.ContinueOnError)
	var (
		host, cacheDir, configFile string
		port                       int
	)
	fs.StringVar(&host, "h", "", "server host address")
	fs.StringVar(&host, "host", "", "server host address")
	fs.IntVar(&port, "p", 0, "server port")
	fs.IntVar(&port, "port", 0, "server port")
	fs.StringVar(&cacheDir, "c", "", "photo cache directory")
	fs.StringVar(&cacheDir, "cache", "", "photo cache directory")
	fs.StringVar(&configFile, "config", defaultConfigFile, "path of the YAML config file")
	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}

	values := make(map[string]any)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "h", "host":
			values["server.host"] = host
		case "p", "port":
			values["server.port"] = port
		case "c", "cache":
			values["cache.dir"] = cacheDir
		}
	})
	return values, configFile, nil
}

// keyTransformer maps INVENTORY_PHOTO_MAXUPLOADBYTES style names onto the
// camel-cased keys in known. Unknown names are lower-cased and dotted.
func keyTransformer(known []string) func(string) string {
	canonical := make(map[string]string, len(known))
	for _, k := range known {
		canonical[strings.ToLower(k)] = k
	}
	return func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, strings.ToLower(envPrefix))
		key = strings.ReplaceAll(key, "_", ".")
		if c, ok := canonical[key]; ok {
			return c
		}
		return key
	}
}

func splitList(value string) []string {
	list := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
