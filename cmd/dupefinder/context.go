package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"dupefinder/internal/config"
	"dupefinder/internal/logging"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		var level string
		if c.logLevelFlag != nil {
			level = *c.logLevelFlag
		}
		logger, err := logging.NewFromConfig(cfg, level)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func resolveFolder(arg string) (string, error) {
	folder := strings.TrimSpace(arg)
	if folder == "" {
		return "", fmt.Errorf("folder is required")
	}
	// Only "~" is expanded; the folder spelling is otherwise kept because
	// discovered paths, and therefore cache keys, are built from it.
	expanded := folder
	if strings.HasPrefix(folder, "~") {
		var err error
		if expanded, err = config.ExpandPath(folder); err != nil {
			return "", fmt.Errorf("resolve folder: %w", err)
		}
	}
	info, err := os.Stat(expanded)
	if err != nil {
		return "", fmt.Errorf("not a valid folder: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a valid folder: %s is not a directory", expanded)
	}
	return expanded, nil
}
