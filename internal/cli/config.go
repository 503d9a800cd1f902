package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/chronoline/pkg/config"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configPathCommand())
	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after merging the config file and environment
over the built-in defaults. The output is a valid config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Encode(stdout, c.Config, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "toml", "output format: toml or yaml")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions([]string{"toml", "yaml"}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.configPath != "" {
				printKeyValue("Loaded", c.configPath)
				return nil
			}
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			printKeyValue("Loaded", "none (built-in defaults)")
			printKeyValue("Searched", dir)
			return nil
		},
	}
}
