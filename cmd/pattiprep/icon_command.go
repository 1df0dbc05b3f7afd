package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pattiprep/internal/icon"
)

func newIconCommand(ctx *commandContext) *cobra.Command {
	var source string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "icon",
		Short: "Render the macOS app icon set and Contents.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx, logger, err := ctx.jobContext(cmd, "icon")
			if err != nil {
				return err
			}
			lock, err := lockJob(cfg, "icon", dryRun)
			if err != nil {
				return err
			}
			defer lock.Release()
			summary, err := icon.NewRunner(cfg, logger).Run(runCtx, icon.Options{Source: source, DryRun: dryRun})
			if err != nil {
				return err
			}
			printIconSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "GIF whose first frame becomes the icon art; defaults to paths.icon_source")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render in memory without writing files")
	return cmd
}

func printIconSummary(cmd *cobra.Command, summary icon.Summary) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(summary.Outputs))
	for _, o := range summary.Outputs {
		rows = append(rows, []string{o.Name, strconv.Itoa(o.Pixels)})
	}
	fmt.Fprintln(out, renderTable(out, []string{"File", "Pixels"}, rows, []columnAlignment{alignLeft, alignRight}))
	g := summary.Geometry
	fmt.Fprintf(out, "Gradient %s -> %s, body %d on %d canvas, art %d\n",
		icon.HexColor(g.Top), icon.HexColor(g.Bottom), g.Body, g.Canvas, g.ArtSize())
	verb := "Wrote"
	if summary.DryRun {
		verb = "Would write"
	}
	fmt.Fprintf(out, "%s %d icons and %s to %s\n", verb, len(summary.Outputs), icon.ContentsName, summary.OutputDir)
}
