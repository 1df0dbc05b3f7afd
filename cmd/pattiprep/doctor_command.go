package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pattiprep/internal/deps"
	"pattiprep/internal/pipeline"
	"pattiprep/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and asset directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ctx.configSeen {
				fmt.Fprintf(out, "Config: %s\n", ctx.configPath)
			} else {
				fmt.Fprintf(out, "Config: %s (not found; using defaults)\n", ctx.configPath)
			}

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			printDependencyTable(out, statuses)

			results := preflight.RunAll(cfg)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, checkLabel(r.Passed, r.Optional), r.Detail})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Check", "Status", "Detail"}, rows, nil))

			if len(deps.MissingRequired(statuses)) > 0 || preflight.Failed(results) {
				return pipeline.Wrap(pipeline.ErrNotFound, "doctor", "preflight", "one or more required checks failed", nil)
			}
			fmt.Fprintln(out, "All required checks passed")
			return nil
		},
	}
}

func printDependencyTable(out io.Writer, statuses []deps.Status) {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		detail := s.Detail
		if detail == "" {
			detail = s.Description
		}
		command := s.Resolved
		if command == "" {
			command = s.Command
		}
		rows = append(rows, []string{s.Name, checkLabel(s.Available, s.Optional), command, detail})
	}
	fmt.Fprintln(out, renderTable(out, []string{"Tool", "Status", "Command", "Detail"}, rows, nil))
}

func checkLabel(passed, optional bool) string {
	switch {
	case passed:
		return "ok"
	case optional:
		return "missing (optional)"
	default:
		return "FAIL"
	}
}
