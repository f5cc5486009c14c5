package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	sceneio "github.com/matzehuels/scenedsl/pkg/io"
	"github.com/matzehuels/scenedsl/pkg/observability"
	"github.com/matzehuels/scenedsl/pkg/pipeline"
	"github.com/matzehuels/scenedsl/pkg/server"
)

// reloadDelay coalesces the burst of events editors emit on save.
const reloadDelay = 200 * time.Millisecond

// serveOpts holds flags for the serve command.
type serveOpts struct {
	addr     string
	training string
	watch    bool
	noCache  bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion pipeline over HTTP",
		Long: `Serve the conversion pipeline over HTTP.

Clients store a training scene with POST /save-scene and pass the returned
session id to /convert/primary and /convert/edit. With --training the server
creates a session from that file at startup and uses it for requests that
name no session; --watch reloads it whenever the file changes.`,
		Example: `  scenedsl serve --addr :8081
  scenedsl serve --training training.json --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				opts.addr = c.Config.Server.Addr
			}
			if !cmd.Flags().Changed("training") {
				opts.training = c.Config.Server.TrainingFile
			}
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8081)")
	cmd.Flags().StringVarP(&opts.training, "training", "t", "", "training scene used when a request names no session")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "reload the training scene when it changes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the completion cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	sessions, err := c.newSessionStore(ctx)
	if err != nil {
		return err
	}
	r, err := c.newRunner(ctx, sessions, opts.noCache)
	if err != nil {
		return err
	}
	defer r.Close()

	srv := server.New(r, c.Logger)
	counters := observability.NewCounters()
	counters.Install()
	srv.SetCounters(counters)

	if opts.training != "" {
		if err := loadTraining(ctx, r, srv, opts.training); err != nil {
			return err
		}
		if opts.watch {
			go func() {
				if err := watchTraining(ctx, r, srv, opts.training, c.Logger); err != nil {
					c.Logger.Error("training watcher stopped", "error", err)
				}
			}()
		}
	} else if opts.watch {
		printWarning("--watch has no effect without --training")
	}

	srvCfg := c.Config.Server
	return srv.ListenAndServe(ctx, opts.addr, server.Timeouts{
		Read:     srvCfg.ReadTimeout.Duration,
		Write:    srvCfg.WriteTimeout.Duration,
		Shutdown: srvCfg.ShutdownTimeout.Duration,
	})
}

// loadTraining reads the training scene at path into a new session and
// makes it the server's default.
func loadTraining(ctx context.Context, r *pipeline.Runner, srv *server.Server, path string) error {
	training, err := sceneio.ImportJSON(path)
	if err != nil {
		return fmt.Errorf("load training scene: %w", err)
	}
	sess, err := r.SaveScene(ctx, training)
	if err != nil {
		return fmt.Errorf("load training scene: %w", err)
	}
	srv.SetDefaultSession(sess.ID)
	return nil
}

// watchTraining reloads the training scene on every write until ctx is done.
// The parent directory is watched so editors that replace the file by rename
// keep triggering reloads. A scene that fails to load leaves the previous
// default session in place.
func watchTraining(ctx context.Context, r *pipeline.Runner, srv *server.Server, path string, logger *log.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Info("watching training scene", "path", abs)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			pending = time.After(reloadDelay)
		case <-pending:
			pending = nil
			previous := srv.DefaultSession()
			if err := loadTraining(ctx, r, srv, abs); err != nil {
				logger.Warn("training scene not reloaded", "error", err)
				continue
			}
			logger.Info("reloaded training scene", "session", srv.DefaultSession(), "previous", previous)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}
