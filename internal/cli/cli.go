// Package cli implements the scenedsl command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scenedsl/pkg/buildinfo"
	"github.com/matzehuels/scenedsl/pkg/cache"
	"github.com/matzehuels/scenedsl/pkg/config"
	"github.com/matzehuels/scenedsl/pkg/generate"
	"github.com/matzehuels/scenedsl/pkg/observability"
	"github.com/matzehuels/scenedsl/pkg/pipeline"
	"github.com/matzehuels/scenedsl/pkg/session"
	"github.com/matzehuels/scenedsl/pkg/session/memory"
	mongostore "github.com/matzehuels/scenedsl/pkg/session/mongo"
	redisstore "github.com/matzehuels/scenedsl/pkg/session/redis"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "scenedsl"

	// stdinArg stands for standard input wherever a file argument is accepted.
	stdinArg = "-"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the TOML file read before every command.
	ConfigPath string
	Config     config.Config

	// Generator overrides the configured text generator. Tests and offline
	// callers set it; nil builds one from Config.
	Generator generate.Generator
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:     newLogger(w, level),
		ConfigPath: config.DefaultPath(),
		Config:     config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// EnableDebug switches to debug logging and reports conversions, generator
// calls and cache activity through the logger.
func (c *CLI) EnableDebug() {
	c.SetLogLevel(LogDebug)
	observability.NewLogHooks(c.Logger).Install()
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "scenedsl converts design scenes to a compact text DSL and back",
		Long: `scenedsl translates design-tool scene trees into a normalized YAML DSL that
language models can read and write, computes and applies structural patches
between scenes, and serves the conversion pipeline over HTTP.`,
		Version:       buildinfo.Get().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", c.ConfigPath, "config file")

	// Register all subcommands
	root.AddCommand(c.encodeCommand())
	root.AddCommand(c.decodeCommand())
	root.AddCommand(c.diffCommand())
	root.AddCommand(c.applyCommand())
	root.AddCommand(c.repairCommand())
	root.AddCommand(c.bboxCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.promptCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	// Only fails on a misspelled flag name.
	if err := registerCompletions(root); err != nil {
		panic(err)
	}
	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		c.SetLogLevel(level)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner over sessions and the configured
// generator. Closing the runner closes sessions.
func (c *CLI) newRunner(ctx context.Context, sessions session.Store, noCache bool) (*pipeline.Runner, error) {
	gen, err := c.newGenerator(ctx, noCache)
	if err != nil {
		sessions.Close()
		return nil, err
	}
	r := pipeline.NewRunner(sessions, gen, c.Logger)
	r.Frame = c.Config.Frame.Geometry()
	r.SessionTTL = c.Config.Session.TTL.Duration
	return r, nil
}

// newGenerator wraps the Anthropic client in the completion cache and the
// rate limiter.
func (c *CLI) newGenerator(ctx context.Context, noCache bool) (generate.Generator, error) {
	if c.Generator != nil {
		return c.Generator, nil
	}
	cfg := c.Config.Generator.Client()
	cfg.Backoff.OnRetry = func(attempt int, wait time.Duration, err error) {
		c.Logger.Warn("model call failed, retrying", "attempt", attempt, "wait", wait, "err", err)
	}
	client, err := generate.NewAnthropicClient(cfg)
	if err != nil {
		return nil, err
	}
	store := cache.Cache(cache.NewNullCache())
	if !noCache {
		if store, err = c.newCache(ctx); err != nil {
			return nil, err
		}
	}
	cached := generate.NewCached(client, store, c.newKeyer(), client.Model(), client.KeyOpts())
	return generate.NewRateLimited(cached, c.Config.Generator.RequestsPerSecond, c.Config.Generator.Burst), nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	cfg := c.Config.Cache
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:   cfg.RedisAddr,
			DB:     cfg.RedisDB,
			Prefix: appName + ":cache:",
		})
	}
	dir := cfg.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) newKeyer() cache.Keyer {
	if ns := c.Config.Cache.Namespace; ns != "" {
		return cache.NewScopedKeyer(cache.NewDefaultKeyer(), ns)
	}
	return cache.NewDefaultKeyer()
}

func (c *CLI) newSessionStore(ctx context.Context) (session.Store, error) {
	cfg := c.Config.Session
	switch cfg.Backend {
	case config.BackendFile:
		dir := cfg.Dir
		if dir == "" {
			d, err := dataDir()
			if err != nil {
				return nil, fmt.Errorf("get data dir: %w", err)
			}
			dir = filepath.Join(d, "sessions")
		}
		return session.NewFileStore(dir)
	case config.BackendRedis:
		return redisstore.NewStore(ctx, redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case config.BackendMongo:
		return mongostore.NewStore(ctx, mongostore.Config{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
	}
	return memory.NewStore(), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/scenedsl/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// dataDir returns the data directory using XDG standard (~/.local/share/scenedsl/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}
