package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config keeps runtime settings for the app.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	DatabaseURL   string `yaml:"database_url"`
	Timezone      string `yaml:"timezone"`
	ReminderEmail string `yaml:"reminder_email"`
}

type ServerConfig struct {
	Port int `yaml:"port"`

	// SecureCookies marks the session cookie Secure; enable behind TLS.
	SecureCookies bool `yaml:"secure_cookies"`
}

type AuthConfig struct {
	SecretKey string `yaml:"secret_key"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`

	// ManifestToken lets external clients create tasks without a session.
	ManifestToken string `yaml:"manifest_token"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type SchedulerConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server:    ServerConfig{Port: 5000},
		Auth:      AuthConfig{SecretKey: "daily-close-dev"},
		SMTP:      SMTPConfig{Host: "smtp.gmail.com", Port: 587},
		Log:       LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Scheduler: SchedulerConfig{Enabled: true},

		DatabaseURL: "sqlite:///daily_close.db",
		Timezone:    "Asia/Kolkata",
	}
}

// Load reads configuration from an optional YAML file, an optional .env file
// and environment variables, in that order of precedence (last wins).
func Load(configFile string) (Config, error) {
	cfg := Default()

	paths := []string{"etc/config.yaml"}
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if configFile != "" {
				return cfg, fmt.Errorf("read config %q: %w", path, err)
			}
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %q: %w", path, err)
		}
		break
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	envSecret(&cfg.Auth.SecretKey, "SECRET_KEY")
	envOverride(&cfg.Auth.Email, "APP_EMAIL")
	envSecret(&cfg.Auth.Password, "APP_PASSWORD")
	envSecret(&cfg.Auth.ManifestToken, "MANIFEST_TOKEN")
	envOverride(&cfg.ReminderEmail, "REMINDER_EMAIL")
	envOverride(&cfg.SMTP.Host, "SMTP_HOST")
	envOverride(&cfg.SMTP.User, "SMTP_USER")
	envSecret(&cfg.SMTP.Password, "SMTP_PASS")
	envOverride(&cfg.DatabaseURL, "DATABASE_URL")
	envOverride(&cfg.Timezone, "APP_TIMEZONE")
	envOverride(&cfg.Log.Level, "LOG_LEVEL")
	envOverride(&cfg.Log.File, "LOG_FILE")
	envSecret(&cfg.Telegram.Token, "TELEGRAM_TOKEN")
	if err := errors.Join(
		envOverrideInt(&cfg.SMTP.Port, "SMTP_PORT"),
		envOverrideInt(&cfg.Server.Port, "PORT"),
		envOverrideBool(&cfg.Scheduler.Enabled, "ENABLE_SCHEDULER"),
		envOverrideBool(&cfg.Server.SecureCookies, "SECURE_COOKIES"),
		envOverrideInt64(&cfg.Telegram.ChatID, "TELEGRAM_CHAT_ID"),
	); err != nil {
		return cfg, err
	}

	cfg.Auth.Email = strings.TrimSpace(cfg.Auth.Email)
	if cfg.ReminderEmail == "" {
		cfg.ReminderEmail = cfg.Auth.Email
	}

	if cfg.Auth.Email == "" || cfg.Auth.Password == "" {
		return cfg, fmt.Errorf("APP_EMAIL and APP_PASSWORD are required")
	}

	return cfg, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// MailEnabled reports whether SMTP credentials are present.
func (c Config) MailEnabled() bool {
	return c.SMTP.User != "" && c.SMTP.Password != ""
}

func (c Config) TelegramEnabled() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != 0
}

func envOverride(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// envSecret keeps the value byte for byte.
func envSecret(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}

func envOverrideInt64(dst *int64, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}

// envOverrideBool accepts anything strconv.ParseBool understands, "1"/"0" included.
func envOverrideBool(dst *bool, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	*dst = b
	return nil
}
