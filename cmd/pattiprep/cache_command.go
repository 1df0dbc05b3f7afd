package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"pattiprep/internal/analysiscache"
	"pattiprep/internal/pipeline"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the audio analysis cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show analysis cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCacheStore(cmd, ctx, func(store *analysiscache.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				rows := [][]string{
					{"Path", stats.Path},
					{"Size", humanBytes(stats.SizeBytes)},
					{"Waveforms", strconv.Itoa(stats.Waveforms)},
					{"Segment plans", strconv.Itoa(stats.SegmentPlans)},
				}
				fmt.Fprintln(out, renderTable(out, []string{"Cache", "Value"}, rows, nil))
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached waveform and segment plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCacheStore(cmd, ctx, func(store *analysiscache.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached %s\n", removed, plural(int(removed), "row", "rows"))
				return nil
			})
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop cache rows for audio files that no longer exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCacheStore(cmd, ctx, func(store *analysiscache.Store) error {
				removed, err := store.Prune(cmd.Context())
				if err != nil {
					return err
				}
				if removed == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No cache entries pruned")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d cached %s\n", removed, plural(int(removed), "row", "rows"))
				return nil
			})
		},
	}
}

// withCacheStore opens the cache under the sounds job lock so maintenance
// never races a running sounds job.
func withCacheStore(cmd *cobra.Command, ctx *commandContext, fn func(*analysiscache.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.Cache.Enabled {
		fmt.Fprintln(cmd.OutOrStdout(), "Analysis cache is disabled (set cache.enabled = true in config.toml)")
		return nil
	}
	if _, err := os.Stat(cfg.CacheDBPath()); os.IsNotExist(err) {
		fmt.Fprintf(cmd.OutOrStdout(), "Analysis cache is empty (%s does not exist yet)\n", cfg.CacheDBPath())
		return nil
	}
	lock, err := lockJob(cfg, "sounds", false)
	if err != nil {
		return err
	}
	defer lock.Release()

	store, err := analysiscache.Open(cmd.Context(), cfg.CacheDBPath())
	if err != nil {
		return pipeline.Wrap(pipeline.ErrConfiguration, "cache", "open", cfg.CacheDBPath(), err)
	}
	defer store.Close()
	return fn(store)
}

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div := int64(unit)
	exp := 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	value := float64(v) / float64(div)
	return fmt.Sprintf("%.1f %ciB", value, "KMGTPEZY"[exp])
}
