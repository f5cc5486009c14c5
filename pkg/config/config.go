// Package config loads scenedsl settings from a TOML file.
//
// Every setting has a default, so a missing file is not an error. The API key
// for the text model is normally taken from the environment variable named
// by generator.api_key_env rather than written to the file.
//
// Example:
//
//	[server]
//	addr = ":8081"
//
//	[frame]
//	x = 200
//	y = 200
//	width = 400
//
//	[generator]
//	model = "claude-sonnet-4-5"
//	requests_per_second = 2
//
//	[session]
//	backend = "redis"
//	ttl = "24h"
//	redis_addr = "localhost:6379"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/scenedsl/pkg/cache"
	"github.com/matzehuels/scenedsl/pkg/core/geometry"
	"github.com/matzehuels/scenedsl/pkg/core/scene"
	"github.com/matzehuels/scenedsl/pkg/errors"
	"github.com/matzehuels/scenedsl/pkg/generate"
	"github.com/matzehuels/scenedsl/pkg/session"
)

// Session and cache backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// DefaultAPIKeyEnv names the environment variable holding the API key.
const DefaultAPIKeyEnv = "ANTHROPIC_API_KEY"

// Duration is a time.Duration written as a string such as "90s" or "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full configuration file.
type Config struct {
	Server    Server    `toml:"server"`
	Frame     Frame     `toml:"frame"`
	Generator Generator `toml:"generator"`
	Session   Session   `toml:"session"`
	Cache     Cache     `toml:"cache"`
	Log       Log       `toml:"log"`
}

// Server configures the HTTP service.
type Server struct {
	Addr            string   `toml:"addr"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	// TrainingFile is loaded into a session at startup when set.
	TrainingFile string `toml:"training_file"`
}

// Frame places scenes created from scratch.
type Frame struct {
	X     float64 `toml:"x"`
	Y     float64 `toml:"y"`
	Width float64 `toml:"width"`
}

// Geometry returns f as a geometry.Frame.
func (f Frame) Geometry() geometry.Frame {
	return geometry.Frame{TopLeft: scene.Point{X: f.X, Y: f.Y}, Width: f.Width}
}

// Generator configures the text model.
type Generator struct {
	Model             string   `toml:"model"`
	BaseURL           string   `toml:"base_url"`
	APIKeyEnv         string   `toml:"api_key_env"`
	MaxTokens         int      `toml:"max_tokens"`
	Temperature       float64  `toml:"temperature"`
	Timeout           Duration `toml:"timeout"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Burst             int      `toml:"burst"`

	// Attempts counts model calls per completion, retries included.
	Attempts int `toml:"attempts"`

	// APIKey is read from the environment, never from the file.
	APIKey string `toml:"-"`
}

// Client returns the settings for generate.NewAnthropicClient.
func (g Generator) Client() generate.Config {
	return generate.Config{
		APIKey:      g.APIKey,
		Model:       g.Model,
		BaseURL:     g.BaseURL,
		MaxTokens:   g.MaxTokens,
		Temperature: g.Temperature,
		Timeout:     g.Timeout.Duration,
		Backoff:     cache.Backoff{Attempts: g.Attempts, Delay: time.Second, MaxDelay: 10 * time.Second},
	}
}

// Session selects and configures the session store.
type Session struct {
	Backend       string   `toml:"backend"`
	TTL           Duration `toml:"ttl"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
}

// Cache selects and configures the completion cache.
type Cache struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
	// Namespace prefixes every key when several deployments share a backend.
	Namespace string `toml:"namespace"`
}

// Log configures the logger.
type Log struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	frame := geometry.DefaultFrame()
	return Config{
		Server: Server{
			Addr:            ":8081",
			ReadTimeout:     Duration{30 * time.Second},
			WriteTimeout:    Duration{3 * time.Minute},
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Frame: Frame{
			X:     frame.TopLeft.X,
			Y:     frame.TopLeft.Y,
			Width: frame.Width,
		},
		Generator: Generator{
			Model:             generate.DefaultModel,
			APIKeyEnv:         DefaultAPIKeyEnv,
			MaxTokens:         generate.DefaultMaxTokens,
			Timeout:           Duration{generate.DefaultTimeout},
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Session: Session{
			Backend: BackendMemory,
			TTL:     Duration{session.DefaultTTL},
		},
		Cache: Cache{
			Backend: BackendFile,
		},
		Log: Log{Level: "info"},
	}
}

// DefaultPath returns the config file location under the user config
// directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "scenedsl", "config.toml")
}

// Load reads path on top of Default and fills the API key from the
// environment. An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			md, err := toml.DecodeFile(path, &cfg)
			if err != nil {
				return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
			}
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
			}
		}
	}
	if cfg.Generator.APIKeyEnv != "" {
		cfg.Generator.APIKey = os.Getenv(cfg.Generator.APIKeyEnv)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and backend names.
func (c Config) Validate() error {
	if c.Frame.Width <= 0 {
		return invalid("frame.width must be positive, got %g", c.Frame.Width)
	}
	if c.Generator.MaxTokens <= 0 {
		return invalid("generator.max_tokens must be positive, got %d", c.Generator.MaxTokens)
	}
	if c.Generator.Temperature < 0 || c.Generator.Temperature > 1 {
		return invalid("generator.temperature must be within [0, 1], got %g", c.Generator.Temperature)
	}
	if c.Generator.RequestsPerSecond < 0 {
		return invalid("generator.requests_per_second cannot be negative")
	}
	if c.Generator.Attempts < 0 {
		return invalid("generator.attempts cannot be negative")
	}
	switch c.Session.Backend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if c.Session.RedisAddr == "" {
			return invalid("session.redis_addr is required for the redis backend")
		}
	case BackendMongo:
		if c.Session.MongoURI == "" {
			return invalid("session.mongo_uri is required for the mongo backend")
		}
	default:
		return invalid("unknown session.backend %q", c.Session.Backend)
	}
	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return invalid("cache.redis_addr is required for the redis backend")
		}
	default:
		return invalid("unknown cache.backend %q", c.Cache.Backend)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("unknown log.level %q", c.Log.Level)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, "%s", fmt.Sprintf(format, args...))
}
