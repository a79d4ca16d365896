package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dupefinder/internal/config"
	"dupefinder/internal/fpstore"
	"dupefinder/internal/similarity"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain a folder's fingerprint cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list <folder>",
		Short: "List cached fingerprints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openFolderCache(ctx, cmd, args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			if jsonOut {
				return writeJSON(cmd, store.Snapshot())
			}

			out := cmd.OutOrStdout()
			keys := store.Keys()
			if len(keys) == 0 {
				fmt.Fprintf(out, "No cached fingerprints in %s\n", store.Path())
				return nil
			}
			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				rec, _ := store.Get(key)
				rows = append(rows, []string{
					key,
					formatDuration(rec.Duration),
					humanize.Comma(int64(len(similarity.Tokenize(rec.Fingerprint)))),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Path", "Duration", "Tokens"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignRight}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the cache as JSON")
	return cmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <folder>",
		Short: "Show cache size, location, and stale entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := openFolderCache(ctx, cmd, args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			stale := 0
			for _, key := range store.Keys() {
				if info, err := os.Stat(key); err != nil || !info.Mode().IsRegular() {
					stale++
				}
			}

			size, modified := "-", "never"
			if info, err := os.Stat(store.Path()); err == nil {
				size = humanize.Bytes(uint64(info.Size()))
				modified = humanize.Time(info.ModTime())
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues([][2]string{
				{"Cache", store.Path()},
				{"Backend", backendName(cfg)},
				{"Entries", humanize.Comma(int64(store.Len()))},
				{"Stale entries", humanize.Comma(int64(stale))},
				{"Size", size},
				{"Last saved", modified},
			}))
			return nil
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune <folder>",
		Short: "Remove cache entries whose files no longer exist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLockedCache(ctx, cmd, args[0], func(store *fpstore.Store, out io.Writer, colors palette) error {
				removed := store.Reconcile()
				for _, path := range removed {
					fmt.Fprintf(out, "%s File missing, removed from cache: %s\n", colors.removed.Sprint("[REMOVED]"), path)
				}
				if len(removed) == 0 {
					fmt.Fprintf(out, "%s No missing files in %s\n", colors.info.Sprint("[INFO]"), store.Path())
					return nil
				}
				if err := store.Save(); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s Removed %d missing file(s) from cache\n", colors.info.Sprint("[CLEAN]"), len(removed))
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <folder>",
		Short: "Drop every cached fingerprint for a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLockedCache(ctx, cmd, args[0], func(store *fpstore.Store, out io.Writer, colors palette) error {
				count := store.Len()
				store.Clear()
				if err := store.Save(); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s Cleared %s cached fingerprint(s) from %s\n",
					colors.info.Sprint("[INFO]"), humanize.Comma(int64(count)), store.Path())
				return nil
			})
		},
	}
}

// openFolderCache loads the cache of folder without taking the run lock.
// A cache that cannot be read is reported and treated as empty.
func openFolderCache(ctx *commandContext, cmd *cobra.Command, arg string) (*fpstore.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	folder, err := resolveFolder(cleanFolderInput(arg))
	if err != nil {
		return nil, err
	}
	return loadCache(cfg, folder, logger, cmd.ErrOrStderr())
}

func withLockedCache(ctx *commandContext, cmd *cobra.Command, arg string, fn func(*fpstore.Store, io.Writer, palette) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	folder, err := resolveFolder(cleanFolderInput(arg))
	if err != nil {
		return err
	}

	lock, err := fpstore.AcquireLock(cfg.CachePath(folder))
	if err != nil {
		return err
	}
	defer lock.Release()

	store, err := loadCache(cfg, folder, logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	return fn(store, out, newPalette(shouldColorize(out)))
}

func loadCache(cfg *config.Config, folder string, logger *slog.Logger, warn io.Writer) (*fpstore.Store, error) {
	backend, err := fpstore.OpenBackend(cfg.Cache.Backend, cfg.CachePath(folder))
	if err != nil {
		return nil, err
	}
	store, err := fpstore.Load(backend, logger)
	if err != nil {
		var loadErr *fpstore.LoadError
		if !errors.As(err, &loadErr) {
			_ = backend.Close()
			return nil, err
		}
		colors := newPalette(shouldColorize(warn))
		fmt.Fprintf(warn, "%s Failed to load cache: %v\n", colors.warn.Sprint("[WARN]"), err)
	}
	return store, nil
}

func backendName(cfg *config.Config) string {
	if name := strings.TrimSpace(cfg.Cache.Backend); name != "" {
		return name
	}
	return config.BackendJSON
}
