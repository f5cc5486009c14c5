package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var (
	sceneExts = []string{"json"}
	dslExts   = []string{"yaml", "yml"}
)

type completeFunc = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective)

// completionCommand prints a shell completion script.
func (c *CLI) completionCommand() *cobra.Command {
	generators := map[string]func(root *cobra.Command, w io.Writer) error{
		"bash": func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
		"zsh":  func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
		"fish": func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
		"powershell": func(root *cobra.Command, w io.Writer) error {
			return root.GenPowerShellCompletionWithDesc(w)
		},
	}

	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Print a shell completion script",
		Long: `Print a shell completion script.

Scene arguments complete to .json files, DSL arguments to .yaml files and
tree --format to its formats.

  source <(scenedsl completion bash)
  scenedsl completion zsh > "${fpath[1]}/_scenedsl"
  scenedsl completion fish > ~/.config/fish/completions/scenedsl.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return generators[args[0]](cmd.Root(), cmd.OutOrStdout())
		},
	}
}

// positionalFiles completes the i-th argument with files matching exts[i].
// Arguments past the last entry are free text.
func positionalFiles(exts ...[]string) completeFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) >= len(exts) {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return exts[len(args)], cobra.ShellCompDirectiveFilterFileExt
	}
}

func filesWithExt(exts []string) completeFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return exts, cobra.ShellCompDirectiveFilterFileExt
	}
}

func fixedValues(values []string) completeFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// registerCompletions attaches argument and flag completions to the
// subcommands of root, addressed by their path below root.
func registerCompletions(root *cobra.Command) error {
	noFiles := fixedValues(nil)
	args := map[string]completeFunc{
		"encode":          positionalFiles(sceneExts),
		"decode":          positionalFiles(dslExts),
		"diff":            positionalFiles(sceneExts, sceneExts),
		"apply":           positionalFiles(sceneExts, dslExts),
		"repair":          positionalFiles(sceneExts),
		"bbox":            positionalFiles(sceneExts),
		"tree":            positionalFiles(sceneExts),
		"prompt primary":  positionalFiles(sceneExts),
		"prompt edit":     positionalFiles(sceneExts),
		"convert primary": noFiles,
		"convert edit":    noFiles,
	}

	flags := map[string]map[string]completeFunc{
		"tree":            {"format": fixedValues(treeFormats)},
		"prompt edit":     {"scene": filesWithExt(sceneExts)},
		"convert primary": {"training": filesWithExt(sceneExts)},
		"convert edit":    {"training": filesWithExt(sceneExts), "scene": filesWithExt(sceneExts)},
		"serve":           {"training": filesWithExt(sceneExts)},
	}

	var walk func(cmd *cobra.Command) error
	walk = func(cmd *cobra.Command) error {
		path := strings.TrimPrefix(cmd.CommandPath(), root.Name()+" ")
		if fn, ok := args[path]; ok {
			cmd.ValidArgsFunction = fn
		}
		for name, fn := range flags[path] {
			if err := cmd.RegisterFlagCompletionFunc(name, fn); err != nil {
				return err
			}
		}
		for _, sub := range cmd.Commands() {
			if err := walk(sub); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root)
}
