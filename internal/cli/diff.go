package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scenedsl/pkg/core/diff"
	"github.com/matzehuels/scenedsl/pkg/errors"
)

// diffOpts holds flags for the diff command.
type diffOpts struct {
	output  string
	json    bool
	summary bool
}

// applyOpts holds flags for the apply command.
type applyOpts struct {
	output string
}

// diffCommand creates the diff command.
func (c *CLI) diffCommand() *cobra.Command {
	var opts diffOpts

	cmd := &cobra.Command{
		Use:   "diff <before.json> <after.json>",
		Short: "Compute the patch that turns one scene into another",
		Long: `Compute the patch that turns one scene into another.

Both scenes are compared in their normalized DSL form, so moving or scaling a
whole scene produces an empty patch. The patch is written as DSL text; use
--json for JSON output and --summary to list the touched paths on stderr.`,
		Example: `  scenedsl diff before.json after.json
  scenedsl diff before.json after.json --summary -o patch.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiff(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "write the patch as JSON")
	cmd.Flags().BoolVarP(&opts.summary, "summary", "s", false, "print a summary of the patch")

	return cmd
}

func (c *CLI) runDiff(cmd *cobra.Command, beforePath, afterPath string, opts diffOpts) error {
	if beforePath == stdinArg && afterPath == stdinArg {
		return errors.New(errors.ErrCodeInvalidInput, "only one scene can be read from stdin")
	}
	before, err := readScene(cmd, beforePath)
	if err != nil {
		return err
	}
	after, err := readScene(cmd, afterPath)
	if err != nil {
		return err
	}

	patch, err := c.coreRunner().Diff(cmd.Context(), before, after)
	if err != nil {
		return err
	}

	var data []byte
	if opts.json {
		data, err = json.MarshalIndent(patch, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = diff.Marshal(patch)
	}
	if err != nil {
		return fmt.Errorf("marshal patch: %w", err)
	}
	if err := writeOutput(cmd, opts.output, data); err != nil {
		return err
	}

	if opts.summary {
		fmt.Fprint(statusOut, formatSummary(patch.Summarize()))
	}
	return nil
}

// applyCommand creates the apply command.
func (c *CLI) applyCommand() *cobra.Command {
	var opts applyOpts

	cmd := &cobra.Command{
		Use:   "apply <scene.json> <patch.yaml>",
		Short: "Apply a patch to a scene",
		Long: `Apply a patch to a scene.

The patch is read as DSL text (JSON patches are accepted too) and replayed on
the normalized scene, which is then put back into the scene's own frame.`,
		Example: `  scenedsl apply before.json patch.yaml -o after.json
  scenedsl diff a.json b.json | scenedsl apply a.json -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runApply(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func (c *CLI) runApply(cmd *cobra.Command, scenePath, patchPath string, opts applyOpts) error {
	if scenePath == stdinArg && patchPath == stdinArg {
		return errors.New(errors.ErrCodeInvalidInput, "only one input can be read from stdin")
	}
	s, err := readScene(cmd, scenePath)
	if err != nil {
		return err
	}
	text, err := readInput(cmd, patchPath)
	if err != nil {
		return err
	}
	patch, err := diff.Unmarshal(text)
	if err != nil {
		return err
	}

	out, err := c.coreRunner().Apply(cmd.Context(), s, patch)
	if err != nil {
		return err
	}
	if err := writeScene(cmd, opts.output, out); err != nil {
		return err
	}
	c.Logger.Debug("applied patch", "changes", len(patch.Summarize().Paths))
	return nil
}
