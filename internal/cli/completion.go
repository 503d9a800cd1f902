package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// completionShells maps each supported shell to its script generator.
var completionShells = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash": func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":  func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish": func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error {
		return root.GenPowerShellCompletionWithDesc(w)
	},
}

func completionShellNames() []string {
	names := make([]string, 0, len(completionShells))
	for name := range completionShells {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (c *CLI) completionCommand() *cobra.Command {
	shells := completionShellNames()
	return &cobra.Command{
		Use:   fmt.Sprintf("completion [%s]", strings.Join(shells, "|")),
		Short: "Generate shell completion scripts",
		Long: fmt.Sprintf(`Generate a completion script for %[1]s. Subcommands, flags, config
formats and output formats are completed.

Bash:        source <(%[1]s completion bash)
Zsh:         %[1]s completion zsh > "${fpath[1]}/_%[1]s"
Fish:        %[1]s completion fish > ~/.config/fish/completions/%[1]s.fish
PowerShell:  %[1]s completion powershell | Out-String | Invoke-Expression`, appName),
		DisableFlagsInUseLine: true,
		ValidArgs:             shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionShells[args[0]](cmd.Root(), stdout)
		},
	}
}
