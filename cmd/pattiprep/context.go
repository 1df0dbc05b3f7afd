package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"pattiprep/internal/config"
	"pattiprep/internal/logging"
	"pattiprep/internal/pipeline"
	"pattiprep/internal/runlock"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = pipeline.Wrap(pipeline.ErrConfiguration, "config", "load", c.configFlagValue(), err)
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		if c.logFormatFlag != nil && strings.TrimSpace(*c.logFormatFlag) != "" {
			cfg.Logging.Format = strings.ToLower(strings.TrimSpace(*c.logFormatFlag))
		}
		c.config = cfg
		c.configPath = path
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// jobContext returns a context carrying a fresh run id and the job name.
// Runners pick both up through logging.WithContext.
func (c *commandContext) jobContext(cmd *cobra.Command, job string) (context.Context, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = pipeline.WithRunID(ctx, uuid.NewString())
	ctx = pipeline.WithJob(ctx, job)
	return ctx, logger, nil
}

// lockJob takes the advisory lock for job. Dry runs write nothing and skip it.
func lockJob(cfg *config.Config, job string, dryRun bool) (*runlock.Lock, error) {
	if dryRun {
		return nil, nil
	}
	lock, err := runlock.Acquire(cfg.Paths.CacheDir, job)
	if err != nil {
		if errors.Is(err, runlock.ErrHeld) {
			return nil, pipeline.Wrap(pipeline.ErrValidation, job, "lock",
				"another pattiprep "+job+" run is in progress", err)
		}
		return nil, pipeline.Wrap(pipeline.ErrConfiguration, job, "lock", cfg.Paths.CacheDir, err)
	}
	return lock, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}
