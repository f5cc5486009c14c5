package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scenedsl/pkg/core/scene"
	"github.com/matzehuels/scenedsl/pkg/errors"
	"github.com/matzehuels/scenedsl/pkg/prompt"
)

// promptOpts holds flags shared by the prompt subcommands.
type promptOpts struct {
	output string
	scene  string
	pick   bool
}

// promptCommand creates the prompt command.
func (c *CLI) promptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Show the prompts built from a training scene",
		Long: `Show the prompts built from a training scene.

A training scene is a list of frames named "<id>. <label>". Each frame holds
exactly two example nodes: the one sorting first is the "before" state, the
other the "after" state. Frames whose name contains "(Primary Only)" are left
out of the edit prompt.

Without a request the prompt prefix is printed. With a request the complete
prompt sent to the generator is printed.`,
	}

	cmd.AddCommand(c.promptPrimaryCommand())
	cmd.AddCommand(c.promptEditCommand())

	return cmd
}

func (c *CLI) promptPrimaryCommand() *cobra.Command {
	var opts promptOpts

	cmd := &cobra.Command{
		Use:   "primary <training.json> [request...]",
		Short: "Show the prompt for creating new scenes",
		Example: `  scenedsl prompt primary training.json
  scenedsl prompt primary training.json "A red button"
  scenedsl prompt primary training.json --pick`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			training, err := readScene(cmd, args[0])
			if err != nil {
				return err
			}
			if opts.pick {
				return c.pickEntry(cmd, training, prompt.PrimaryEntry, opts.output)
			}
			prefixes, err := prompt.Build(training)
			if err != nil {
				return err
			}
			text := prefixes.Primary
			if request := strings.Join(args[1:], " "); request != "" {
				text = prefixes.PrimaryQuery(request)
			}
			return writeOutput(cmd, opts.output, withNewline(text))
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "pick one training frame interactively and show its entry")

	return cmd
}

func (c *CLI) promptEditCommand() *cobra.Command {
	var opts promptOpts

	cmd := &cobra.Command{
		Use:   "edit <training.json> [request...]",
		Short: "Show the prompt for editing a scene",
		Example: `  scenedsl prompt edit training.json
  scenedsl prompt edit training.json "Make it blue" --scene button.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			training, err := readScene(cmd, args[0])
			if err != nil {
				return err
			}
			if opts.pick {
				return c.pickEntry(cmd, training, prompt.EditEntry, opts.output)
			}
			prefixes, err := prompt.Build(training)
			if err != nil {
				return err
			}
			text := prefixes.Edit
			if request := strings.Join(args[1:], " "); request != "" {
				if opts.scene == "" {
					return errors.New(errors.ErrCodeInvalidInput, "--scene is required with a request")
				}
				current, err := readScene(cmd, opts.scene)
				if err != nil {
					return err
				}
				if text, err = prefixes.EditQuery(request, current); err != nil {
					return err
				}
			}
			return writeOutput(cmd, opts.output, withNewline(text))
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.scene, "scene", "", "scene to edit (JSON)")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "pick one training frame interactively and show its entry")

	return cmd
}

// pickEntry lets the user choose a training frame and writes the prompt
// entry built from it.
func (c *CLI) pickEntry(cmd *cobra.Command, training scene.Scene, entry func(scene.Node) (string, error), output string) error {
	if training.Len() == 0 {
		printWarning("Training scene has no frames")
		return nil
	}

	p := tea.NewProgram(NewFrameListModel(training.Nodes),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(statusOut))
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	fm, ok := finalModel.(FrameListModel)
	if !ok || fm.Selected == nil {
		printDetail("No selection made")
		return nil
	}

	text, err := entry(*fm.Selected)
	if err != nil {
		return err
	}
	c.Logger.Debug("built prompt entry", "frame", fm.Selected.Name, "label", prompt.Label(fm.Selected.Name))
	return writeOutput(cmd, output, withNewline(text))
}
