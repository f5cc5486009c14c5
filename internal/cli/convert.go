package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scenedsl/pkg/core/scene"
	"github.com/matzehuels/scenedsl/pkg/errors"
	"github.com/matzehuels/scenedsl/pkg/pipeline"
	"github.com/matzehuels/scenedsl/pkg/session"
	"github.com/matzehuels/scenedsl/pkg/session/memory"
)

// convertOpts holds flags shared by the convert subcommands.
type convertOpts struct {
	output   string
	training string
	session  string
	scene    string
	noCache  bool
	summary  bool
}

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Create or edit scenes from text requests",
		Long: `Create or edit scenes from text requests.

The request is completed by the configured text generator, primed with the
prompts built from a training scene. Pass the training scene with --training,
or name a session stored by "scenedsl serve" with --session when both use a
shared session backend.

The generator API key is read from the environment variable named by
generator.api_key_env (ANTHROPIC_API_KEY by default). Completions are cached
unless --no-cache is given.`,
	}

	cmd.AddCommand(c.convertPrimaryCommand())
	cmd.AddCommand(c.convertEditCommand())

	return cmd
}

func (c *CLI) convertPrimaryCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:     "primary <request...>",
		Short:   "Create a new scene from a text request",
		Example: `  scenedsl convert primary "A login form with two fields" --training training.json`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd, strings.Join(args, " "), opts, c.convertPrimary)
		},
	}

	addConvertFlags(cmd, &opts)

	return cmd
}

func (c *CLI) convertEditCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:     "edit <request...>",
		Short:   "Edit a scene from a text request",
		Example: `  scenedsl convert edit "Make the button blue" --scene button.json --training training.json --summary`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.scene == "" {
				return errors.New(errors.ErrCodeInvalidInput, "--scene is required")
			}
			return c.runConvert(cmd, strings.Join(args, " "), opts, c.convertEdit)
		},
	}

	addConvertFlags(cmd, &opts)
	cmd.Flags().StringVar(&opts.scene, "scene", "", "scene to edit (JSON, - for stdin)")
	cmd.Flags().BoolVarP(&opts.summary, "summary", "s", false, "print a summary of the generated patch")

	return cmd
}

func addConvertFlags(cmd *cobra.Command, opts *convertOpts) {
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.training, "training", "t", "", "training scene (JSON)")
	cmd.Flags().StringVar(&opts.session, "session", "", "stored session id")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the completion cache")
}

// convertFunc runs one conversion against an established session.
type convertFunc func(cmd *cobra.Command, r *pipeline.Runner, sessionID, request string, opts convertOpts) error

func (c *CLI) runConvert(cmd *cobra.Command, request string, opts convertOpts, fn convertFunc) error {
	if (opts.training == "") == (opts.session == "") {
		return errors.New(errors.ErrCodeInvalidInput, "exactly one of --training and --session is required")
	}
	ctx := withLogger(cmd.Context(), c.Logger)
	cmd.SetContext(ctx)

	// A training file only lives for this run.
	var sessions session.Store = memory.NewStore()
	if opts.session != "" {
		store, err := c.newSessionStore(ctx)
		if err != nil {
			return err
		}
		sessions = store
	}
	r, err := c.newRunner(ctx, sessions, opts.noCache)
	if err != nil {
		return err
	}
	defer r.Close()

	sessionID := opts.session
	if opts.training != "" {
		training, err := readScene(cmd, opts.training)
		if err != nil {
			return err
		}
		sess, err := r.SaveScene(ctx, training)
		if err != nil {
			return err
		}
		sessionID = sess.ID
	}

	return fn(cmd, r, sessionID, request, opts)
}

func (c *CLI) convertPrimary(cmd *cobra.Command, r *pipeline.Runner, sessionID, request string, opts convertOpts) error {
	ctx := cmd.Context()
	prog := newProgress(loggerFromContext(ctx), "convert primary")

	var out scene.Scene
	err := generating(ctx, "Generating scene...", func(ctx context.Context) error {
		var err error
		out, err = r.ConvertPrimary(ctx, sessionID, request)
		return err
	})
	if err != nil {
		return prog.fail(err)
	}
	if err := writeScene(cmd, opts.output, out); err != nil {
		return err
	}

	prog.done("created scene", "session", sessionID)
	printStats(out.Len(), out.Count())
	return nil
}

func (c *CLI) convertEdit(cmd *cobra.Command, r *pipeline.Runner, sessionID, request string, opts convertOpts) error {
	ctx := cmd.Context()
	prog := newProgress(loggerFromContext(ctx), "convert edit")

	current, err := readScene(cmd, opts.scene)
	if err != nil {
		return err
	}

	var res *pipeline.EditResult
	err = generating(ctx, "Generating edit...", func(ctx context.Context) error {
		var err error
		res, err = r.ConvertEdit(ctx, sessionID, request, current)
		return err
	})
	if err != nil {
		return prog.fail(err)
	}
	if err := writeScene(cmd, opts.output, res.Scene); err != nil {
		return err
	}

	prog.done("edited scene", "session", sessionID)
	printDetail("origin %g, %g", res.Origin.X, res.Origin.Y)
	if opts.summary {
		fmt.Fprint(statusOut, formatSummary(res.Patch.Summarize()))
	}
	return nil
}

// generating runs fn with a spinner on the status stream.
func generating(ctx context.Context, message string, fn func(context.Context) error) error {
	s := startSpinner(ctx, message)
	defer s.Stop()
	return fn(ctx)
}
