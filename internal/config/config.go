package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "ENERGY_DIGEST_CONFIG"
	feedsPathEnv      = "ENERGY_DIGEST_FEEDS"
	logLevelEnv       = "LOG_LEVEL"
	databasePathEnv   = "DATABASE_PATH"
	scoringAPIKeyEnv  = "SCORING_API_KEY"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	scoringModelEnv   = "SCORING_MODEL"
	smtpHostEnv       = "SMTP_HOST"
	smtpPortEnv       = "SMTP_PORT"
	smtpUserEnv       = "SMTP_USER"
	smtpPassEnv       = "SMTP_PASS"
	fromAddressEnv    = "FROM_ADDRESS"
	recipientsEnv     = "RECIPIENT_EMAILS"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"

	ProviderChat      = "chat"
	ProviderLangchain = "langchain"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Feeds     []FeedConfig    `yaml:"feeds"`
	Filter    FilterConfig    `yaml:"filter"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Digest    DigestConfig    `yaml:"digest"`
	Mail      MailConfig      `yaml:"mail"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Topics    []TopicConfig   `yaml:"topics"`
}

// LoggingConfig selects the slog level and output format ("text" or "json").
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig points at the SQLite file that tracks seen and sent articles.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines how often `serve` runs a cycle and where the
// single-instance lock lives.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
	LockPath string        `yaml:"lockPath"`
}

// FetchConfig tunes feed retrieval.
type FetchConfig struct {
	LookbackHours int           `yaml:"lookbackHours"`
	UserAgent     string        `yaml:"userAgent"`
	Timeout       time.Duration `yaml:"timeout"`
	Concurrency   int           `yaml:"concurrency"`
}

// Lookback returns the recency window as a duration.
func (f FetchConfig) Lookback() time.Duration {
	return time.Duration(f.LookbackHours) * time.Hour
}

// FeedConfig is one RSS or Atom feed.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// FilterConfig tunes dedup and the final per-topic cap.
type FilterConfig struct {
	DedupThreshold float64 `yaml:"dedupThreshold"`
	MaxPerTopic    int     `yaml:"maxPerTopic"`
}

// ScoringConfig describes the relevance scoring service. An empty APIKey
// disables scoring.
type ScoringConfig struct {
	Provider      string        `yaml:"provider"`
	Endpoint      string        `yaml:"endpoint"`
	Model         string        `yaml:"model"`
	APIKey        string        `yaml:"apiKey"`
	Timeout       time.Duration `yaml:"timeout"`
	RatePerSecond float64       `yaml:"ratePerSecond"`
	Concurrency   int           `yaml:"concurrency"`
	MaxCalls      int           `yaml:"maxCalls"`
	Threshold     int           `yaml:"threshold"`
	CallDelay     time.Duration `yaml:"callDelay"`
}

// Enabled reports whether a credential is configured.
func (s ScoringConfig) Enabled() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

// DigestConfig controls the subject line and which articles get marked sent.
type DigestConfig struct {
	Subject string `yaml:"subject"`
	// MarkAll marks every reviewed article as sent after a successful delivery,
	// not just the ones that made it into the digest.
	MarkAll *bool `yaml:"markAll"`
}

// MarkAllReviewed resolves the MarkAll default.
func (d DigestConfig) MarkAllReviewed() bool {
	return d.MarkAll == nil || *d.MarkAll
}

// MailConfig holds SMTP settings. Mail delivery is enabled when Host is set.
type MailConfig struct {
	Host       string   `yaml:"host"`
	Port       int      `yaml:"port"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	From       string   `yaml:"from"`
	Recipients []string `yaml:"recipients"`
}

// Enabled reports whether mail delivery is configured.
func (m MailConfig) Enabled() bool {
	return strings.TrimSpace(m.Host) != ""
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether Telegram delivery is configured.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

type feedsFile struct {
	Feeds []FeedConfig `yaml:"feeds"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile reads the YAML file at path (may be empty) and applies environment
// overrides. Unreadable files are logged and ignored.
func LoadFile(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	if feedsPath := os.Getenv(feedsPathEnv); feedsPath != "" {
		feeds, err := LoadFeeds(feedsPath)
		if err != nil {
			log.Printf("config: %v", err)
		} else {
			cfg.Feeds = feeds
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// LoadFeeds reads a standalone feeds file of the form `feeds: [{name, url}]`.
func LoadFeeds(path string) ([]FeedConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feeds %s: %w", path, err)
	}
	var file feedsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse feeds %s: %w", path, err)
	}
	return file.Feeds, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.Scoring.APIKey = v
	}
	if v := os.Getenv(scoringAPIKeyEnv); v != "" {
		c.Scoring.APIKey = v
	}
	if v := os.Getenv(scoringModelEnv); v != "" {
		c.Scoring.Model = v
	}

	if v := os.Getenv(smtpHostEnv); v != "" {
		c.Mail.Host = v
	}
	if v := os.Getenv(smtpPortEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Mail.Port = port
		} else {
			log.Printf("config: invalid %s %q, keeping %d", smtpPortEnv, v, c.Mail.Port)
		}
	}
	if v := os.Getenv(smtpUserEnv); v != "" {
		c.Mail.Username = v
	}
	if v := os.Getenv(smtpPassEnv); v != "" {
		c.Mail.Password = v
	}
	if v := os.Getenv(fromAddressEnv); v != "" {
		c.Mail.From = v
	}
	if v := os.Getenv(recipientsEnv); v != "" {
		c.Mail.Recipients = splitList(v)
	}
	if c.Mail.From == "" {
		c.Mail.From = c.Mail.Username
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Telegram.ChatID = v
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Database.Path != "" {
		base.Database.Path = override.Database.Path
	}

	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.LockPath != "" {
		base.Scheduler.LockPath = override.Scheduler.LockPath
	}

	if override.Fetch.LookbackHours > 0 {
		base.Fetch.LookbackHours = override.Fetch.LookbackHours
	}
	if override.Fetch.UserAgent != "" {
		base.Fetch.UserAgent = override.Fetch.UserAgent
	}
	if override.Fetch.Timeout > 0 {
		base.Fetch.Timeout = override.Fetch.Timeout
	}
	if override.Fetch.Concurrency > 0 {
		base.Fetch.Concurrency = override.Fetch.Concurrency
	}

	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	if override.Filter.DedupThreshold > 0 {
		base.Filter.DedupThreshold = override.Filter.DedupThreshold
	}
	if override.Filter.MaxPerTopic > 0 {
		base.Filter.MaxPerTopic = override.Filter.MaxPerTopic
	}

	base.Scoring = mergeScoring(base.Scoring, override.Scoring)

	if override.Digest.Subject != "" {
		base.Digest.Subject = override.Digest.Subject
	}
	if override.Digest.MarkAll != nil {
		base.Digest.MarkAll = override.Digest.MarkAll
	}

	if override.Mail.Host != "" {
		base.Mail.Host = override.Mail.Host
	}
	if override.Mail.Port > 0 {
		base.Mail.Port = override.Mail.Port
	}
	if override.Mail.Username != "" {
		base.Mail.Username = override.Mail.Username
	}
	if override.Mail.Password != "" {
		base.Mail.Password = override.Mail.Password
	}
	if override.Mail.From != "" {
		base.Mail.From = override.Mail.From
	}
	if len(override.Mail.Recipients) > 0 {
		base.Mail.Recipients = override.Mail.Recipients
	}

	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}
	if override.Telegram.ChatID != "" {
		base.Telegram.ChatID = override.Telegram.ChatID
	}

	if len(override.Topics) > 0 {
		base.Topics = override.Topics
	}

	return base
}

func mergeScoring(base, override ScoringConfig) ScoringConfig {
	if override.Provider != "" {
		base.Provider = override.Provider
	}
	if override.Endpoint != "" {
		base.Endpoint = override.Endpoint
	}
	if override.Model != "" {
		base.Model = override.Model
	}
	if override.APIKey != "" {
		base.APIKey = override.APIKey
	}
	if override.Timeout > 0 {
		base.Timeout = override.Timeout
	}
	if override.RatePerSecond > 0 {
		base.RatePerSecond = override.RatePerSecond
	}
	if override.Concurrency > 0 {
		base.Concurrency = override.Concurrency
	}
	if override.MaxCalls > 0 {
		base.MaxCalls = override.MaxCalls
	}
	if override.Threshold > 0 {
		base.Threshold = override.Threshold
	}
	if override.CallDelay > 0 {
		base.CallDelay = override.CallDelay
	}
	return base
}

func defaultConfig() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Database: DatabaseConfig{Path: "articles.db"},
		Scheduler: SchedulerConfig{
			Interval: 7 * 24 * time.Hour,
			LockPath: "energy-digest.lock",
		},
		Fetch: FetchConfig{
			LookbackHours: 169,
			UserAgent:     "energy-digest/1.0",
			Timeout:       30 * time.Second,
			Concurrency:   4,
		},
		Filter: FilterConfig{
			DedupThreshold: 0.85,
			MaxPerTopic:    10,
		},
		Scoring: ScoringConfig{
			Provider:      ProviderChat,
			Endpoint:      "https://api.openai.com/v1/chat/completions",
			Model:         "gpt-4o-mini",
			Timeout:       20 * time.Second,
			RatePerSecond: 4,
			Concurrency:   4,
			MaxCalls:      150,
			Threshold:     6,
			CallDelay:     500 * time.Millisecond,
		},
		Digest: DigestConfig{Subject: "Energy Security Weekly"},
		Mail:   MailConfig{Port: 587},
		Topics: DefaultTopics(),
	}
}
