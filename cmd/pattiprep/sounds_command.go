package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pattiprep/internal/analysiscache"
	"pattiprep/internal/config"
	"pattiprep/internal/logging"
	"pattiprep/internal/soundcheck"
)

func newSoundsCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "sounds",
		Short: "Convert, segment, and catalogue sounds into the sound manifest",
		Long: "Scan paths.sounds_dir, convert unsupported formats to WAV with ffmpeg,\n" +
			"split shuffle sources on silence, compute waveforms, and reconcile\n" +
			"the sound manifest with what is on disk.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx, logger, err := ctx.jobContext(cmd, "sounds")
			if err != nil {
				return err
			}
			lock, err := lockJob(cfg, "sounds", dryRun)
			if err != nil {
				return err
			}
			defer lock.Release()

			cache := openAnalysisCache(cmd, cfg, logger)
			if cache != nil {
				defer cache.Close()
			}

			report, err := soundcheck.NewRunner(cfg, logger, cache).Run(runCtx, soundcheck.Options{DryRun: dryRun})
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, report)
			}
			printSoundsReport(cmd.OutOrStdout(), cfg, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report planned changes without touching files")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the run report as JSON")
	return cmd
}

// openAnalysisCache returns nil when the cache is disabled or unusable; the
// sounds job then decodes everything from scratch.
func openAnalysisCache(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) *analysiscache.Store {
	if !cfg.Cache.Enabled {
		return nil
	}
	store, err := analysiscache.Open(cmd.Context(), cfg.CacheDBPath())
	if err != nil {
		logging.WarnWithContext(logger, "analysis cache unavailable", "cache_open_failed",
			logging.String("path", cfg.CacheDBPath()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "waveforms and segments are recomputed"),
			logging.String(logging.FieldErrorHint, "run pattiprep cache clear or delete the cache file"),
		)
		return nil
	}
	return store
}

func printSoundsReport(out io.Writer, cfg *config.Config, report soundcheck.Report) {
	fmt.Fprintf(out, "Found %d audio %s in %s\n", report.Scanned, plural(report.Scanned, "file", "files"), report.SoundsDir)
	if report.NothingToDo {
		fmt.Fprintln(out, "Nothing to do.")
		return
	}

	if len(report.Conversions) > 0 {
		fmt.Fprintf(out, "\n%d file(s) need conversion:\n", len(report.Conversions))
		for _, c := range report.Conversions {
			switch {
			case c.Planned:
				fmt.Fprintf(out, "  [dry-run] Would convert %s -> %s\n", c.Source, c.Target)
			case c.Error != "":
				fmt.Fprintf(out, "  ERROR converting %s: %s\n", c.Source, c.Error)
			default:
				fmt.Fprintf(out, "  Converted %s -> %s\n", c.Source, c.Target)
			}
		}
	}

	if len(report.Shuffle) > 0 {
		rows := make([][]string, 0, len(report.Shuffle))
		for _, s := range report.Shuffle {
			status := "split"
			switch {
			case s.Error != "":
				status = "error: " + s.Error
			case s.Cached:
				status = "cached"
			case report.DryRun:
				status = "planned"
			}
			rows = append(rows, []string{s.Source, strconv.Itoa(len(s.Segments)), strconv.Itoa(s.Stale), status})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable(out, []string{"Shuffle source", "Segments", "Stale removed", "Status"}, rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft}))
	}
	if len(report.OrphanSegments) > 0 {
		fmt.Fprintf(out, "Removed %d orphaned segment(s): %s\n", len(report.OrphanSegments), strings.Join(report.OrphanSegments, ", "))
	}

	if report.ManifestReset {
		fmt.Fprintln(out, "  WARNING: Could not parse existing manifest, starting fresh")
	}
	if report.DryRun {
		for _, a := range report.Added {
			fmt.Fprintf(out, "  [dry-run] Would add: %s (%s)\n", a.ID, a.File)
		}
	}
	for _, a := range report.Adopted {
		fmt.Fprintf(out, "  Kept edits for %s (now %s)\n", a.ID, a.File)
	}
	if len(report.Removed) > 0 {
		fmt.Fprintf(out, "\n%d file(s) no longer on disk (removed from manifest):\n", len(report.Removed))
		for _, r := range report.Removed {
			fmt.Fprintf(out, "  %s (%s)\n", r.ID, r.File)
		}
	}
	for _, w := range report.WaveformErrors {
		fmt.Fprintf(out, "  WARNING: waveform unavailable for %s\n", w)
	}

	newCount := len(report.Added)
	if report.Written {
		fmt.Fprintf(out, "\nManifest written: %d sounds (%d new)\n", report.Total, newCount)
	} else if report.DryRun {
		fmt.Fprintf(out, "\n[dry-run] Would write manifest with %d entries (%d new)\n", report.Total, newCount)
	}

	rows := make([][]string, 0, len(report.Categories)+1)
	for _, c := range report.Categories {
		rows = append(rows, []string{c.Category, strconv.Itoa(c.Count)})
	}
	rows = append(rows, []string{"Total", strconv.Itoa(report.Total)})
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(out, []string{"Category", "Sounds"}, rows, []columnAlignment{alignLeft, alignRight}))

	if newCount > 0 {
		fmt.Fprintf(out, "\n%d new sound(s) added with category '%s'.\n", newCount, report.DefaultCategory)
		fmt.Fprintf(out, "Edit %s to set names and categories.\n", cfg.Sounds.ManifestName)
	}
}
