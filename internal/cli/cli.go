// Package cli implements the chronoline command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chronoline/pkg/buildinfo"
	"github.com/matzehuels/chronoline/pkg/cache"
	"github.com/matzehuels/chronoline/pkg/config"
	"github.com/matzehuels/chronoline/pkg/observability"
	"github.com/matzehuels/chronoline/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "chronoline"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is replaced by the loaded file before any command runs.
	Config config.Config

	configFlag string
	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               appName,
		Short:             "Chronoline renders zoomable timelines from CSV",
		Long:              `Chronoline turns a CSV of dated events into a zoomable, pannable timeline that can be rendered to files, browsed in the terminal or served to a browser.`,
		Version:           buildinfo.Get().Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFlag, "config", "", "config file (default $XDG_CONFIG_HOME/chronoline/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup runs before every command: it applies --verbose, loads the config
// file and attaches the logger to the command context.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		observability.NewLogHooks(c.Logger).Register()
	}

	cfg, path, err := config.Load(c.configFlag)
	if err != nil {
		return err
	}
	c.Config, c.configPath = cfg, path
	if path != "" {
		c.Logger.Debug("config loaded", "path", path)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.Config.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, c.Config.Cache.Prefix)
	}
	r := pipeline.NewRunner(cc, keyer, c.Logger)
	r.FetchTTL = c.Config.Cache.FetchTTL.Std()
	return r, nil
}

// newCache opens the configured cache backend. An unusable file cache
// directory degrades to no caching; an unreachable Redis is an error.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, c.Config.Cache.RedisURL)
	}

	dir, err := c.Config.Cache.Path()
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Debug("cache disabled", "dir", dir, "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// frameOptions returns pipeline options seeded from the config file. Flags
// applied afterwards override them.
func (c *CLI) frameOptions(input string) pipeline.Options {
	r := c.Config.Render
	return pipeline.Options{
		Input:        input,
		Width:        r.Width,
		Height:       r.Height,
		DPR:          r.DPR,
		ShowLegend:   r.Legend,
		NoMinorTicks: !r.MinorTicks,
		FontFamily:   r.FontFamily,
		EmbedFont:    r.EmbedFont,
		View:         c.Config.View(),
		Logger:       c.Logger,
	}
}
