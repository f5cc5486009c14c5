package cli

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scenedsl/pkg/core/geometry"
	"github.com/matzehuels/scenedsl/pkg/core/repair"
	"github.com/matzehuels/scenedsl/pkg/core/scene"
	"github.com/matzehuels/scenedsl/pkg/errors"
	"github.com/matzehuels/scenedsl/pkg/render"
	"github.com/matzehuels/scenedsl/pkg/render/tree"
)

// Tree output formats.
const (
	formatOutline = "outline"
	formatDOT     = "dot"
	formatSVG     = "svg"
	formatPDF     = "pdf"
	formatPNG     = "png"
)

var treeFormats = []string{formatOutline, formatDOT, formatSVG, formatPDF, formatPNG}

// treeOpts holds flags for the tree command.
type treeOpts struct {
	output   string
	format   string
	detailed bool
	scale    float64
}

// repairCommand creates the repair command.
func (c *CLI) repairCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "repair [scene.json]",
		Short: "Wrap leaves that carry children in groups",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := readScene(cmd, inputArg(args, 0))
			if err != nil {
				return err
			}
			broken := countLeavesWithChildren(s)
			if err := writeScene(cmd, output, repair.Scene(s)); err != nil {
				return err
			}
			if broken == 0 {
				printInfo("Scene is well-formed")
			} else {
				printSuccess("Wrapped %d leaves in groups", broken)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func countLeavesWithChildren(s scene.Scene) int {
	n := 0
	s.Walk(func(node scene.Node, _ int) bool {
		if !node.Kind.IsContainer() && node.HasChildren() {
			n++
		}
		return true
	})
	return n
}

// bboxCommand creates the bbox command.
func (c *CLI) bboxCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "bbox [scene.json]",
		Short: "Print the bounding box of a scene",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := readScene(cmd, inputArg(args, 0))
			if err != nil {
				return err
			}
			box, err := geometry.BoundingBox(s)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]float64{
					"x":      box.TopLeft.X,
					"y":      box.TopLeft.Y,
					"width":  box.Width(),
					"height": box.Height(),
				})
			}
			printKeyValue(w, "top-left", fmt.Sprintf("%g, %g", box.TopLeft.X, box.TopLeft.Y))
			printKeyValue(w, "bottom-right", fmt.Sprintf("%g, %g", box.BottomRight.X, box.BottomRight.Y))
			printKeyValue(w, "size", fmt.Sprintf("%g × %g", box.Width(), box.Height()))
			printKeyValue(w, "nodes", fmt.Sprintf("%d", s.Count()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}

// treeCommand creates the tree command.
func (c *CLI) treeCommand() *cobra.Command {
	opts := treeOpts{format: formatOutline, scale: 2}

	cmd := &cobra.Command{
		Use:   "tree [scene.json]",
		Short: "Show the node hierarchy of a scene",
		Long: `Show the node hierarchy of a scene.

The default outline format prints an indented tree to the terminal. The dot,
svg, pdf and png formats draw the hierarchy with Graphviz; pdf and png need
rsvg-convert on the PATH.`,
		Example: `  scenedsl tree training.json --detailed
  scenedsl tree scene.json -f svg -o scene.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd, inputArg(args, 0), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: outline, dot, svg, pdf, png")
	cmd.Flags().BoolVarP(&opts.detailed, "detailed", "d", false, "show geometry and color of leaves")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "png scale factor")

	return cmd
}

func (c *CLI) runTree(cmd *cobra.Command, input string, opts treeOpts) error {
	ctx := cmd.Context()

	format := strings.ToLower(opts.format)
	if !slices.Contains(treeFormats, format) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want one of %s)", opts.format, strings.Join(treeFormats, ", "))
	}

	s, err := readScene(cmd, input)
	if err != nil {
		return err
	}
	topts := tree.Options{Detailed: opts.detailed}

	if format == formatOutline {
		return writeOutput(cmd, opts.output, []byte(tree.Outline(s, topts)))
	}

	dot := tree.ToDOT(s, topts)
	if format == formatDOT {
		return writeOutput(cmd, opts.output, []byte(dot))
	}

	svg, err := tree.RenderSVG(ctx, dot)
	if err != nil {
		return err
	}
	data := svg
	switch format {
	case formatPDF:
		data, err = render.ToPDF(ctx, svg)
	case formatPNG:
		data, err = render.ToPNG(ctx, svg, opts.scale)
		if stderrors.Is(err, render.ErrNoConverter) {
			printWarning("rsvg-convert not found; rendering PNG with Graphviz at scale 1")
			data, err = tree.RenderPNG(ctx, dot)
		}
	}
	if err != nil {
		return err
	}
	c.Logger.Debug("rendered tree", "format", format, "bytes", len(data))
	return writeOutput(cmd, opts.output, data)
}
