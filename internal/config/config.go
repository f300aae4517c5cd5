package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts "2s"-style strings in YAML.
type Duration time.Duration

// UnmarshalYAML parses the scalar with time.ParseDuration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts back to the standard library type.
func (d Duration) Std() time.Duration { return time.Duration(d) }

const (
	configPathEnv     = "ARTICLES_HARVESTER_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Scraper       ScraperConfig      `yaml:"scraper"`
	Queries       []QueryConfig      `yaml:"queries"`
	Sources       []string           `yaml:"sources"`
	Rate          RateConfig         `yaml:"rate"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
}

// LoggingConfig controls console log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ScraperConfig toggles the optional pipeline stages. The boolean flags are
// pointers so a YAML file that omits them keeps the defaults instead of
// flipping them to false.
type ScraperConfig struct {
	DownloadPDFs *bool  `yaml:"downloadPdfs"`
	StrictFilter *bool  `yaml:"strictFilter"`
	PDFDir       string `yaml:"pdfDir"`
	MaxResults   int    `yaml:"maxResults"`
}

// DownloadEnabled reports whether artifacts are fetched; unset means on.
func (s ScraperConfig) DownloadEnabled() bool {
	return s.DownloadPDFs == nil || *s.DownloadPDFs
}

// StrictEnabled reports whether zero-hit records are rejected; unset means on.
func (s ScraperConfig) StrictEnabled() bool {
	return s.StrictFilter == nil || *s.StrictFilter
}

// QueryConfig is one keyword phrase with optional source-specific
// constraints (arXiv category codes).
type QueryConfig struct {
	Keywords   string   `yaml:"keywords"`
	Categories []string `yaml:"categories"`
}

// RateConfig governs request pacing and retry behavior, shared by all
// adapters and the downloader.
type RateConfig struct {
	Intervals map[string]Duration `yaml:"intervals"`
	Retry     RetryConfig         `yaml:"retry"`
}

// RetryConfig parameterizes the shared retry policy.
type RetryConfig struct {
	MaxAttempts int      `yaml:"maxAttempts"`
	BaseDelay   Duration `yaml:"baseDelay"`
	MaxDelay    Duration `yaml:"maxDelay"`
	Factor      float64  `yaml:"factor"`
}

// DatabaseConfig describes Postgres connection details. Empty DSN disables
// persistence.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SchedulerConfig enables recurring harvests; zero interval means run once.
type SchedulerConfig struct {
	Interval Duration `yaml:"interval"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
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

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Scraper.DownloadPDFs != nil {
		base.Scraper.DownloadPDFs = override.Scraper.DownloadPDFs
	}
	if override.Scraper.StrictFilter != nil {
		base.Scraper.StrictFilter = override.Scraper.StrictFilter
	}
	if override.Scraper.PDFDir != "" {
		base.Scraper.PDFDir = override.Scraper.PDFDir
	}
	if override.Scraper.MaxResults > 0 {
		base.Scraper.MaxResults = override.Scraper.MaxResults
	}

	if len(override.Queries) > 0 {
		base.Queries = override.Queries
	}
	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	if len(override.Rate.Intervals) > 0 {
		base.Rate.Intervals = override.Rate.Intervals
	}
	if override.Rate.Retry.MaxAttempts > 0 {
		base.Rate.Retry.MaxAttempts = override.Rate.Retry.MaxAttempts
	}
	if override.Rate.Retry.BaseDelay > 0 {
		base.Rate.Retry.BaseDelay = override.Rate.Retry.BaseDelay
	}
	if override.Rate.Retry.MaxDelay > 0 {
		base.Rate.Retry.MaxDelay = override.Rate.Retry.MaxDelay
	}
	if override.Rate.Retry.Factor > 1 {
		base.Rate.Retry.Factor = override.Rate.Retry.Factor
	}

	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Scraper: ScraperConfig{
			PDFDir:     "pdf_articles",
			MaxResults: 50,
		},
		Queries: []QueryConfig{
			{Keywords: "machine learning finance"},
			{Keywords: "deep learning trading"},
			{Keywords: "reinforcement learning portfolio"},
			{Keywords: "neural networks market prediction"},
			{Keywords: "AI algorithmic trading"},
		},
		Sources: []string{"arxiv", "ssrn", "scholar", "jfds"},
		Rate: RateConfig{
			Intervals: map[string]Duration{
				"arxiv":            Duration(3 * time.Second),
				"arxiv/download":   Duration(2 * time.Second),
				"ssrn":             Duration(3 * time.Second),
				"ssrn/download":    Duration(3 * time.Second),
				"scholar":          Duration(5 * time.Second),
				"scholar/download": Duration(3 * time.Second),
				"jfds":             Duration(2 * time.Second),
			},
			Retry: RetryConfig{
				MaxAttempts: 3,
				BaseDelay:   Duration(2 * time.Second),
				MaxDelay:    Duration(30 * time.Second),
				Factor:      2,
			},
		},
	}
}
