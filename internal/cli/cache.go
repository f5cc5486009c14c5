package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scenedsl/pkg/cache"
	"github.com/matzehuels/scenedsl/pkg/config"
)

// cacheCommand groups the completion cache maintenance commands. They only
// act on the file backend; Redis entries expire on their own.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the completion cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all cached completions",
			Args:  cobra.NoArgs,
			RunE:  c.runCacheClear,
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show the number and size of cached completions",
			Args:  cobra.NoArgs,
			RunE:  c.runCacheStats,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				dir, err := c.fileCacheDir()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
				return nil
			},
		},
	)
	return cmd
}

// fileCacheDir returns the [cache] dir setting or the XDG default.
func (c *CLI) fileCacheDir() (string, error) {
	if dir := c.Config.Cache.Dir; dir != "" {
		return dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}

// openFileCache opens the file cache without creating it. It returns nil
// when another backend is configured or nothing has been cached yet.
func (c *CLI) openFileCache() (*cache.FileCache, error) {
	if backend := c.Config.Cache.Backend; backend != config.BackendFile {
		printInfo("Cache backend is %q; nothing to do", backend)
		return nil, nil
	}
	dir, err := c.fileCacheDir()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil, nil
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) runCacheClear(cmd *cobra.Command, args []string) error {
	fc, err := c.openFileCache()
	if err != nil || fc == nil {
		return err
	}
	n, err := fc.Clear()
	if err != nil {
		return err
	}
	printSuccess("Cleared %d cached completions", n)
	printDetail("Directory: %s", fc.Dir())
	return nil
}

func (c *CLI) runCacheStats(cmd *cobra.Command, args []string) error {
	fc, err := c.openFileCache()
	if err != nil || fc == nil {
		return err
	}
	st, err := fc.Stats()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	printKeyValue(w, "entries", strconv.Itoa(st.Entries))
	printKeyValue(w, "expired", strconv.Itoa(st.Expired))
	printKeyValue(w, "bytes", strconv.FormatInt(st.Bytes, 10))
	printKeyValue(w, "dir", fc.Dir())
	return nil
}
