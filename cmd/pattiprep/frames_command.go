package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pattiprep/internal/config"
	"pattiprep/internal/frames"
)

func newFramesCommand(ctx *commandContext) *cobra.Command {
	var mode string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "frames",
		Short: "Extract GIF frames to PNG sequences and write manifest.json",
		Long: "Extract every GIF in paths.gif_dir into per-animation PNG frame directories.\n\n" +
			"outline mode writes black line art on transparency; template mode writes\n" +
			"grayscale frames for SwiftUI template rendering.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx, logger, err := ctx.jobContext(cmd, "frames")
			if err != nil {
				return err
			}
			lock, err := lockJob(cfg, "frames", dryRun)
			if err != nil {
				return err
			}
			defer lock.Release()
			summary, err := frames.NewRunner(cfg, logger).Run(runCtx, frames.Options{Mode: mode, DryRun: dryRun})
			if err != nil {
				return err
			}
			printFramesSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", fmt.Sprintf("Frame style (%s or %s); defaults to frames.mode", config.FrameModeOutline, config.FrameModeTemplate))
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Decode and report without writing files")
	return cmd
}

func printFramesSummary(cmd *cobra.Command, summary frames.Summary) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(summary.Results))
	for _, r := range summary.Results {
		delays := make([]string, 0, len(r.DelaysMs))
		for _, d := range r.DelaysMs {
			delays = append(delays, strconv.Itoa(d))
		}
		rows = append(rows, []string{r.ID, r.Name, strconv.Itoa(r.FrameCount), strings.Join(compactDelays(delays), ",")})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable(out, []string{"ID", "Name", "Frames", "Delays (ms)"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
	}
	for _, s := range summary.Skipped {
		fmt.Fprintf(out, "Skipped %s: %s\n", s.Source, s.Reason)
	}
	verb := "Wrote"
	if summary.DryRun {
		verb = "Would write"
	}
	fmt.Fprintf(out, "%s %d %s (%d frames, %s mode) to %s\n",
		verb,
		len(summary.Results),
		plural(len(summary.Results), "animation", "animations"),
		summary.TotalFrames(),
		summary.Mode,
		summary.OutputDir,
	)
}

// compactDelays collapses a uniform delay list to one value.
func compactDelays(delays []string) []string {
	if len(delays) < 2 {
		return delays
	}
	for _, d := range delays[1:] {
		if d != delays[0] {
			return delays
		}
	}
	return []string{delays[0] + " x" + strconv.Itoa(len(delays))}
}
