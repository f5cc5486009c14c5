package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scenedsl/pkg/core/geometry"
	"github.com/matzehuels/scenedsl/pkg/pipeline"
)

// encodeOpts holds flags for the encode command.
type encodeOpts struct {
	output string
}

// decodeOpts holds flags for the decode command.
type decodeOpts struct {
	output string
	x      float64
	y      float64
	width  float64
}

// coreRunner returns a runner for conversions that need neither sessions
// nor a generator.
func (c *CLI) coreRunner() *pipeline.Runner {
	r := pipeline.NewRunner(nil, nil, c.Logger)
	r.Frame = c.Config.Frame.Geometry()
	return r
}

// encodeCommand creates the encode command.
func (c *CLI) encodeCommand() *cobra.Command {
	var opts encodeOpts

	cmd := &cobra.Command{
		Use:   "encode [scene.json]",
		Short: "Convert a JSON scene to DSL text",
		Long: `Convert a JSON scene to DSL text.

The scene is normalized to its bounding box: the top-left corner moves to the
origin and the width is scaled to the canonical width. The original frame is
reported on stderr so the DSL can be decoded back into place.`,
		Example: `  scenedsl encode scene.json
  scenedsl encode scene.json -o scene.yaml
  cat scene.json | scenedsl encode -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEncode(cmd, inputArg(args, 0), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func (c *CLI) runEncode(cmd *cobra.Command, input string, opts encodeOpts) error {
	ctx := cmd.Context()
	prog := newProgress(c.Logger, "encode")

	s, err := readScene(cmd, input)
	if err != nil {
		return err
	}
	res, err := c.coreRunner().Encode(ctx, s)
	if err != nil {
		return prog.fail(err)
	}
	if err := writeOutput(cmd, opts.output, withNewline(res.DSL)); err != nil {
		return err
	}

	prog.done("encoded scene", "nodes", s.Count())
	printNextStep("Decode in place", decodeHint(res.Frame))
	return nil
}

func decodeHint(f geometry.Frame) string {
	return fmt.Sprintf("%s decode --x %g --y %g --width %g", appName, f.TopLeft.X, f.TopLeft.Y, f.Width)
}

// decodeCommand creates the decode command.
func (c *CLI) decodeCommand() *cobra.Command {
	var opts decodeOpts

	cmd := &cobra.Command{
		Use:   "decode [scene.yaml]",
		Short: "Convert DSL text to a JSON scene",
		Long: `Convert DSL text to a JSON scene.

The decoded scene is scaled from the canonical width to --width and moved to
(--x, --y). Leaves that carry children are wrapped in groups. Without flags
the frame comes from the [frame] config section.`,
		Example: `  scenedsl decode scene.yaml --x 120 --y 40 --width 300
  scenedsl encode scene.json | scenedsl decode -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDecode(cmd, inputArg(args, 0), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().Float64Var(&opts.x, "x", 0, "left edge of the target frame")
	cmd.Flags().Float64Var(&opts.y, "y", 0, "top edge of the target frame")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "width of the target frame")

	return cmd
}

func (c *CLI) runDecode(cmd *cobra.Command, input string, opts decodeOpts) error {
	ctx := cmd.Context()
	prog := newProgress(c.Logger, "decode")

	text, err := readInput(cmd, input)
	if err != nil {
		return err
	}

	frame := c.Config.Frame.Geometry()
	flags := cmd.Flags()
	if flags.Changed("x") {
		frame.TopLeft.X = opts.x
	}
	if flags.Changed("y") {
		frame.TopLeft.Y = opts.y
	}
	if flags.Changed("width") {
		frame.Width = opts.width
	}

	s, err := c.coreRunner().Decode(ctx, string(text), frame)
	if err != nil {
		return prog.fail(err)
	}
	if err := writeScene(cmd, opts.output, s); err != nil {
		return err
	}

	prog.done("decoded scene", "nodes", s.Count())
	return nil
}

// inputArg returns args[i], or "-" (stdin) when absent.
func inputArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return stdinArg
}
