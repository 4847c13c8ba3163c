package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"NewsSpider/internal/ordering"
)

const (
	defaultTimezone   = "UTC"
	defaultConfigPath = "config.yaml"
	configPathEnv     = "NEWS_SPIDER_CONFIG"
	envFileEnv        = "ENV_FILE"
	databaseDSNEnv    = "DATABASE_DSN"
	logLevelEnv       = "LOG_LEVEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"

	legacyTelegramTokenEnv  = "TELEGRAM_TOKEN"
	legacyTelegramChatIDEnv = "TELEGRAM_CHAT"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Spider        SpiderConfig       `yaml:"news_spider"`
	Policy        PolicyConfig       `yaml:"policy"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
}

// LoggingConfig selects log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig names the link store; postgres:// and sqlite:// DSNs are supported.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SpiderConfig lists the listing pages to crawl, in crawl order.
type SpiderConfig struct {
	URLs []ListingConfig `yaml:"urls"`
}

// ListingConfig is a listing page; in YAML either a plain URL string or a mapping
// with url and ordering.
type ListingConfig struct {
	URL      string `yaml:"url"`
	Ordering string `yaml:"ordering"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (l *ListingConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		l.URL = strings.TrimSpace(value.Value)
		l.Ordering = ""
		return nil
	}

	type plain ListingConfig
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*l = ListingConfig(p)
	l.URL = strings.TrimSpace(l.URL)
	return nil
}

// PolicyConfig overrides filter thresholds; zero values keep the defaults.
type PolicyConfig struct {
	MaxAge           time.Duration `yaml:"maxAge"`
	MinTextLength    int           `yaml:"minTextLength"`
	MinKeywordScore  int           `yaml:"minKeywordScore"`
	MinKeywordLength int           `yaml:"minKeywordLength"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	Endpoint string `yaml:"endpoint"`
}

// SchedulerConfig defines when the periodic crawl runs.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	return time.UTC
}

// Error reports a configuration that cannot be used. The process must not start crawling.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Path returns the configuration file location from the environment or the default.
func Path() string {
	if path := os.Getenv(configPathEnv); path != "" {
		return path
	}
	return defaultConfigPath
}

// Load reads the YAML file at path, loads .env files and applies environment overrides.
func Load(path string) (Config, error) {
	if err := loadEnvFiles(); err != nil {
		return Config{}, &Error{Path: path, Err: err}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &Error{Path: path, Err: err}
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, &Error{Path: path, Err: fmt.Errorf("parse: %w", err)}
	}

	cfg.applyEnvOverrides()
	if err := cfg.bindTimezone(); err != nil {
		return Config{}, &Error{Path: path, Err: err}
	}
	if err := cfg.validate(); err != nil {
		return Config{}, &Error{Path: path, Err: err}
	}

	return cfg, nil
}

// loadEnvFiles loads ENV_FILE when set, otherwise .env if present. Variables already in
// the environment win.
func loadEnvFiles() error {
	if envFile := os.Getenv(envFileEnv); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := firstEnv(telegramTokenEnv, legacyTelegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := firstEnv(telegramChatIDEnv, legacyTelegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func (c *Config) bindTimezone() error {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("unknown timezone %s: %w", tz, err)
	}
	c.Scheduler.location = loc
	return nil
}

func (c *Config) validate() error {
	if len(c.Spider.URLs) == 0 {
		return errors.New("news_spider.urls is empty")
	}
	registry := ordering.NewRegistry()
	for i, listing := range c.Spider.URLs {
		if listing.URL == "" {
			return fmt.Errorf("news_spider.urls[%d] has no url", i)
		}
		if _, err := registry.Resolve(listing.Ordering); err != nil {
			return fmt.Errorf("news_spider.urls[%d]: %w", i, err)
		}
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is empty")
	}
	if c.Policy.MaxAge < 0 || c.Policy.MinTextLength < 0 || c.Policy.MinKeywordScore < 0 || c.Policy.MinKeywordLength < 0 {
		return errors.New("policy values must not be negative")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Database:  DatabaseConfig{DSN: "sqlite:///news_spider.db"},
		Scheduler: SchedulerConfig{CronExpression: "*/30 * * * *", Timezone: defaultTimezone},
	}
}
