package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dupefinder/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [folder]",
		Short: "Check that fpcalc and the scan directories are usable",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var folder string
			if len(args) == 1 {
				folder = cleanFolderInput(args[0])
				if expanded, err := resolveFolder(folder); err == nil {
					folder = expanded
				}
			}

			results := preflight.RunAll(cmd.Context(), cfg, folder)
			out := cmd.OutOrStdout()
			colors := newPalette(shouldColorize(out))

			fmt.Fprintf(out, "Config: %s\n", ctx.configPath)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := colors.ok.Sprint("OK")
				if !r.Passed {
					status = colors.err.Sprint("FAIL")
				}
				rows = append(rows, []string{r.Name, status, r.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}
