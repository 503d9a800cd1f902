package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chronoline/pkg/cache"
	"github.com/matzehuels/chronoline/pkg/config"
	errs "github.com/matzehuels/chronoline/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the fetch and render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheInfoCommand())

	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached CSVs and rendered frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := c.fileCache()
			if err != nil {
				return err
			}
			if fc == nil {
				printInfo("Cache is empty")
				return nil
			}

			_, size, _ := fc.Stats()
			n, err := fc.Clear()
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared %d cached entries (%s)", n, humanize.Bytes(uint64(size)))
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.Config.Cache.Path()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}

func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the cache backend and its size",
		RunE: func(cmd *cobra.Command, args []string) error {
			printKeyValue("Backend", c.Config.Cache.Backend)
			printKeyValue("Fetch TTL", c.Config.Cache.FetchTTL.Std().String())
			if c.Config.Cache.Backend == config.CacheRedis {
				printKeyValue("Redis", c.Config.Cache.RedisURL)
				return nil
			}

			fc, err := c.fileCache()
			if err != nil {
				return err
			}
			if fc == nil {
				printKeyValue("Entries", "0")
				return nil
			}
			n, size, err := fc.Stats()
			if err != nil {
				return fmt.Errorf("read cache: %w", err)
			}
			printKeyValue("Directory", fc.Dir())
			printKeyValue("Entries", strconv.Itoa(n))
			printKeyValue("Size", humanize.Bytes(uint64(size)))
			return nil
		},
	}
}

// fileCache opens the file cache without creating it. It returns nil when
// the directory does not exist yet.
func (c *CLI) fileCache() (*cache.FileCache, error) {
	if c.Config.Cache.Backend == config.CacheRedis {
		return nil, errs.New(errs.ErrCodeUnsupported, "the redis cache expires entries itself; clear it with redis-cli")
	}
	dir, err := c.Config.Cache.Path()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	return cache.NewFileCache(dir)
}
