package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/chronoline/internal/server"
)

type serveFlags struct {
	addr    string
	noWatch bool
	legend  bool
	noCache bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve <csv|url>",
		Short: "Serve an interactive timeline viewer over HTTP",
		Long: `Serve a timeline to the browser.

Every browser tab gets its own server-side view that pans with the mouse or
touch, zooms with the wheel and buttons, and shows event details on click.
Local files are reloaded when they change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg := c.serverConfig()
			if cmd.Flags().Changed("addr") {
				cfg.Addr = flags.addr
			}
			if cmd.Flags().Changed("legend") {
				cfg.Frame.ShowLegend = flags.legend
			}
			if flags.noWatch {
				cfg.Watch = false
			}

			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := c.frameOptions(args[0])
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			loader, err := runner.NewLoader(opts)
			if err != nil {
				return err
			}

			srv, err := server.New(cfg, loader, logger)
			if err != nil {
				return err
			}
			printSuccess("Viewer at %s", StyleNumber.Render("http://"+cfg.Addr))
			printDetail("Press Ctrl+C to stop")
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&flags.noWatch, "no-watch", false, "do not reload local files when they change")
	cmd.Flags().BoolVar(&flags.legend, "legend", true, "draw the legend strip")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	return cmd
}

// serverConfig translates the config file into server settings.
func (c *CLI) serverConfig() server.Config {
	s := c.Config.Server
	r := c.Config.Render
	cfg := server.DefaultConfig()
	cfg.Addr = s.Addr
	cfg.SessionTTL = s.SessionTTL.Std()
	cfg.CleanupInterval = s.CleanupInterval.Std()
	cfg.Watch = s.Watch
	cfg.Debounce = s.Debounce.Std()
	cfg.View = c.Config.View()
	cfg.Frame.NoMinorTicks = !r.MinorTicks
	cfg.Frame.FontFamily = r.FontFamily
	cfg.Frame.EmbedFont = r.EmbedFont
	return cfg
}
