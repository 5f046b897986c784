// Package config handles loading and parsing application configuration.
//
// Two sources, in priority order:
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// When neither is set, configuration is read from environment variables
// alone, which is how the server runs in containers.
package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration structure. Every field maps to a key in
// the YAML file and can be overridden by the corresponding env variable.
type Config struct {
	// Env controls log verbosity. Valid values: "dev", "prod".
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	HTTPServer `yaml:"http_server"`
	Storage    Storage `yaml:"storage"`
	Blob       Blob    `yaml:"blob"`
	Auth       Auth    `yaml:"auth"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:":8080"`
}

// Storage locates the SQLite database file. The parent directory is
// created at startup if missing.
type Storage struct {
	Path string `yaml:"path" env:"DB_PATH" env-default:"data/internmatch.db"`
}

// Blob configures the on-disk blob store for resumes and company logos.
// BaseURL is the public path prefix under which stored files are served.
type Blob struct {
	Root    string `yaml:"root" env:"BLOB_ROOT" env-default:"data/blobs"`
	BaseURL string `yaml:"base_url" env:"BLOB_BASE_URL" env-default:"/blobs"`
}

// Auth holds token-signing settings. JWTSecret is env-required: the server
// refuses to start without it rather than falling back to a weak default.
type Auth struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`
}

// MustLoad reads, validates, and returns the application config.
// Following the Go "Must" convention it exits the process on failure, so
// callers never see an invalid config.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		flagPath := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flagPath
	}

	var cfg Config

	if configPath == "" {
		// Env-only mode: everything has a default except JWT_SECRET.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from environment: %s", err)
		}
		return &cfg
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return &cfg
}
