package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dupefinder/internal/fingerprint"
	"dupefinder/internal/fpcalc"
	"dupefinder/internal/fpstore"
	"dupefinder/internal/matcher"
	"dupefinder/internal/preflight"
	"dupefinder/internal/similarity"
)

type compareResult struct {
	A         string  `json:"a"`
	B         string  `json:"b"`
	Score     float64 `json:"score"`
	Percent   float64 `json:"percent"`
	Threshold float64 `json:"threshold"`
	Match     bool    `json:"match"`
}

func newCompareCommand(ctx *commandContext) *cobra.Command {
	var (
		threshold float64
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "compare <file-a> <file-b>",
		Short: "Fingerprint two files and print their similarity",
		Long: `Fingerprint two audio files directly, without reading or writing any
cache, and report the similarity score against the match threshold.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if threshold == 0 {
				threshold = cfg.Scan.Threshold
			}
			engine, err := similarity.NewEngine(threshold)
			if err != nil {
				return err
			}

			resolved, err := preflight.RequireFingerprinter(cfg)
			if err != nil {
				return err
			}
			client := fpcalc.New(resolved, cfg.FPCalc.LengthSeconds, cfg.FingerprintTimeout())
			provider := fingerprint.NewProvider(client, logger)

			records := make([]fpstore.Record, len(args))
			for i, path := range args {
				rec, _, err := provider.Acquire(cmd.Context(), path, nil)
				if err != nil {
					return err
				}
				records[i] = rec
			}

			score := engine.Score(records[0].Fingerprint, records[1].Fingerprint)
			result := compareResult{
				A:         args[0],
				B:         args[1],
				Score:     score,
				Percent:   matcher.RoundPercent(score),
				Threshold: engine.Threshold,
				Match:     engine.IsMatch(score),
			}
			if jsonOut {
				return writeJSON(cmd, result)
			}

			rows := make([][]string, 0, len(args))
			for i, path := range args {
				rows = append(rows, []string{
					path,
					formatDuration(records[i].Duration),
					humanize.Comma(int64(len(similarity.Tokenize(records[i].Fingerprint)))),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"File", "Duration", "Tokens"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignRight}))

			verdict := "not a match"
			if result.Match {
				verdict = "match"
			}
			fmt.Fprintf(out, "Similarity: %s%% (threshold %s%%): %s\n",
				matcher.FormatPercent(score), matcher.FormatPercent(engine.Threshold), verdict)
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Match threshold (defaults to the configured value)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the comparison as JSON")
	return cmd
}

// formatDuration renders whole seconds as m:ss.
func formatDuration(seconds int) string {
	if seconds < 0 {
		return strconv.Itoa(seconds)
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
