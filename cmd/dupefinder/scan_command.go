package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dupefinder/internal/config"
	"dupefinder/internal/dedupe"
)

type scanOptions struct {
	progress  bool
	jsonOut   bool
	threshold float64
	strategy  string
	workers   int
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan [folder]",
		Short: "Fingerprint a folder and report near-duplicate audio files",
		Long: `Fingerprint every audio file under folder, reusing cached fingerprints,
then compare every cached pair and write matches to the result log.

Without a folder argument the folder is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCfg, err := applyScanOverrides(cfg, opts)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				out = cmd.ErrOrStderr()
			}
			reporter := newConsoleReporter(out, "", opts.progress)
			reporter.heading("Audio Duplicate Finder")

			runner, err := dedupe.New(dedupe.Options{
				Config:   runCfg,
				Reporter: reporter,
				Logger:   logger,
			})
			if err != nil {
				return err
			}

			var folderArg string
			if len(args) == 1 {
				folderArg = cleanFolderInput(args[0])
			} else {
				folderArg, err = promptFolder(cmd.InOrStdin(), out)
				if err != nil {
					return err
				}
			}
			folder, err := resolveFolder(folderArg)
			if err != nil {
				return err
			}
			reporter.folder = folder

			reporter.Checking()
			summary, err := runner.Run(cmd.Context(), folder)
			if err != nil {
				return err
			}

			if opts.jsonOut {
				return writeJSON(cmd, summary)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderScanSummary(summary))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.progress, "progress", false, "Show a progress bar instead of one line per file")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the run summary and matches as JSON on stdout")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "Override the match threshold (0 < t <= 1)")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "Override the match strategy (pairwise or indexed)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Override the number of parallel fpcalc workers")
	return cmd
}

func applyScanOverrides(cfg *config.Config, opts scanOptions) (*config.Config, error) {
	runCfg := *cfg
	if opts.threshold != 0 {
		runCfg.Scan.Threshold = opts.threshold
	}
	if s := strings.ToLower(strings.TrimSpace(opts.strategy)); s != "" {
		runCfg.Scan.Strategy = s
	}
	if opts.workers != 0 {
		runCfg.Scan.Workers = opts.workers
	}
	if err := runCfg.Validate(); err != nil {
		return nil, err
	}
	return &runCfg, nil
}

func renderScanSummary(s dedupe.Summary) string {
	count := func(n int) string { return humanize.Comma(int64(n)) }
	return renderKeyValues([][2]string{
		{"Audio files found", count(s.Files)},
		{"Stale entries removed", count(s.Removed)},
		{"Cached fingerprints used", count(s.Cached)},
		{"Newly fingerprinted", count(s.New)},
		{"Could not fingerprint", count(s.Misses)},
		{"Cache entries scanned", count(s.Entries)},
		{"Pairs compared", count(s.Comparisons)},
		{"Matches", count(len(s.Matches))},
		{"Elapsed", s.Elapsed.Round(time.Millisecond).String()},
	})
}
