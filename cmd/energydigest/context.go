package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"EnergyDigest/internal/app"
	"EnergyDigest/internal/config"
	"EnergyDigest/internal/logging"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     config.Config
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, logLevelFlag: logLevelFlag}
}

func (c *commandContext) ensureConfig() config.Config {
	c.configOnce.Do(func() {
		path := ""
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		if path != "" {
			c.config = config.LoadFile(path)
		} else {
			c.config = config.Load()
		}
		if c.logLevelFlag != nil && *c.logLevelFlag != "" {
			c.config.Logging.Level = *c.logLevelFlag
		}
	})
	return c.config
}

func (c *commandContext) logger() *slog.Logger {
	cfg := c.ensureConfig()
	return logging.NewWithFormat(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
}

func (c *commandContext) application(ctx context.Context) (*app.Application, *slog.Logger, error) {
	logger := c.logger()
	application, err := app.New(ctx, c.ensureConfig(), logger)
	if err != nil {
		return nil, nil, err
	}
	return application, logger, nil
}
