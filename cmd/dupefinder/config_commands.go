package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dupefinder/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		targetPath string
		overwrite  bool
		printOnly  bool
	)

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if printOnly {
				_, err := fmt.Fprint(out, config.Sample())
				return err
			}

			target, err := configInitTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				switch _, err := os.Stat(target); {
				case err == nil:
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				case !errors.Is(err, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", err)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}

			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set fpcalc.binary (or export DUPEFINDER_FPCALC) if fpcalc is not on PATH.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the sample configuration instead of writing it")
	return cmd
}

// configInitTarget resolves --path, falling back to the default location.
func configInitTarget(flagValue string) (string, error) {
	target := strings.TrimSpace(flagValue)
	if target == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return path, nil
	}
	path, err := config.ExpandPath(target)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if !ctx.configExists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, renderKeyValues([][2]string{
				{"Threshold", fmt.Sprintf("%g", cfg.Scan.Threshold)},
				{"Strategy", cfg.Scan.Strategy},
				{"Workers", fmt.Sprintf("%d", cfg.Scan.Workers)},
				{"Extensions", strings.Join(cfg.Scan.Extensions, " ")},
				{"fpcalc", cfg.FPCalc.Binary},
				{"Cache backend", backendName(cfg)},
				{"Cache file", cfg.Cache.FileName},
				{"Result log", cfg.Scan.ResultLog},
			}))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
