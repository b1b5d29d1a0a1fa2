package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validateFilter(); err != nil {
		return err
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateTopics(); err != nil {
		return err
	}
	if err := c.validateMail(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path must be set")
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if c.Scheduler.Interval <= 0 {
		return errors.New("scheduler.interval must be positive")
	}
	if strings.TrimSpace(c.Scheduler.LockPath) == "" {
		return errors.New("scheduler.lockPath must be set")
	}
	if c.Fetch.LookbackHours <= 0 {
		return errors.New("fetch.lookbackHours must be positive")
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported (use text or json)", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateFilter() error {
	if c.Filter.DedupThreshold <= 0 || c.Filter.DedupThreshold > 1 {
		return errors.New("filter.dedupThreshold must be in (0, 1]")
	}
	if c.Filter.MaxPerTopic <= 0 {
		return errors.New("filter.maxPerTopic must be positive")
	}
	return nil
}

func (c *Config) validateScoring() error {
	switch c.Scoring.Provider {
	case ProviderChat, ProviderLangchain:
	default:
		return fmt.Errorf("scoring.provider %q is not supported (use %q or %q)", c.Scoring.Provider, ProviderChat, ProviderLangchain)
	}
	if c.Scoring.Threshold < 1 || c.Scoring.Threshold > 10 {
		return errors.New("scoring.threshold must be between 1 and 10")
	}
	if c.Scoring.Concurrency <= 0 {
		return errors.New("scoring.concurrency must be positive")
	}
	if c.Scoring.MaxCalls <= 0 {
		return errors.New("scoring.maxCalls must be positive")
	}
	if c.Scoring.CallDelay < 0 {
		return errors.New("scoring.callDelay must not be negative")
	}
	if c.Scoring.Enabled() && strings.TrimSpace(c.Scoring.Model) == "" {
		return errors.New("scoring.model must be set when scoring is enabled")
	}
	return nil
}

func (c *Config) validateTopics() error {
	if len(c.Topics) == 0 {
		return errors.New("at least one topic must be configured")
	}
	names := make(map[string]bool, len(c.Topics))
	for i, t := range c.Topics {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("topics[%d].name must be set", i)
		}
		if names[t.Name] {
			return fmt.Errorf("topic %q is defined twice", t.Name)
		}
		names[t.Name] = true
		if len(t.Keywords) == 0 {
			return fmt.Errorf("topic %q has no keywords", t.Name)
		}
	}
	return nil
}

func (c *Config) validateMail() error {
	if !c.Mail.Enabled() {
		return nil
	}
	if c.Mail.Port <= 0 {
		return errors.New("mail.port must be positive when mail.host is set")
	}
	if len(c.Mail.Recipients) == 0 {
		return errors.New("mail.recipients must be set when mail.host is set")
	}
	if strings.TrimSpace(c.Mail.From) == "" {
		return errors.New("mail.from must be set when mail.host is set")
	}
	return nil
}
