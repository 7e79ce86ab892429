package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/tweet-media-relay/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const (
	// DefaultMaxDownloadBytes is the largest file Telegram fetches by URL itself.
	DefaultMaxDownloadBytes int64 = 20 * 1024 * 1024
	// DefaultMaxUploadBytes is the largest file a bot may upload.
	DefaultMaxUploadBytes int64 = 50 * 1024 * 1024
)

type Config struct {
	TelegramBotToken string `koanf:"telegram_bot_token"`
	DeveloperID      int64  `koanf:"developer_id"`
	IsBotPrivate     bool   `koanf:"is_bot_private"`
	DeliveryChatID   int64  `koanf:"delivery_chat_id"`
	StoragePath      string `koanf:"storage_path"`
	HTTPPort         string `koanf:"http_port"`
	ScrapeAPIURL     string `koanf:"scrape_api_url"`
	ScrapeMaxRetries int    `koanf:"scrape_max_retries"`
	HTTPTimeout      int    `koanf:"http_timeout"`
	MaxDownloadBytes int64  `koanf:"max_download_bytes"`
	MaxUploadBytes   int64  `koanf:"max_upload_bytes"`
	Workers          int    `koanf:"workers"`
	QueueSize        int    `koanf:"queue_size"`
	HistoryLimit     int    `koanf:"history_limit"`
	AppEnv           AppEnv `koanf:"app_env"`
}

// RequestTimeout returns the per-request timeout shared by outbound HTTP clients.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

// TempPath is where oversized videos are buffered before upload.
func (c *Config) TempPath() string {
	return filepath.Join(c.StoragePath, "tmp")
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try to load config file from various formats
	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Environment variables override config file values: DEVELOPER_ID -> developer_id
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	setDefaults(k)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	if appEnvStr := k.String("app_env"); appEnvStr != "" {
		if env, err := ParseAppEnv(appEnvStr); err == nil {
			cfg.AppEnv = env
		} else {
			cfg.AppEnv = AppEnvProduction
		}
	} else {
		cfg.AppEnv = AppEnvProduction
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(k *koanf.Koanf) {
	defaults := map[string]any{
		"storage_path":       "./data",
		"http_port":          "8080",
		"scrape_api_url":     "https://api.vxtwitter.com",
		"scrape_max_retries": 2,
		"http_timeout":       30,
		"max_download_bytes": DefaultMaxDownloadBytes,
		"max_upload_bytes":   DefaultMaxUploadBytes,
		"workers":            8,
		"queue_size":         64,
		"history_limit":      50,
		"app_env":            "production",
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}
}

// Validate checks required fields and threshold ordering.
func (c *Config) Validate() error {
	if c.TelegramBotToken == "" {
		return errors.ErrMissingBotToken
	}
	if c.DeveloperID == 0 {
		return errors.ErrMissingDeveloperID
	}
	if c.MaxDownloadBytes <= 0 || c.MaxUploadBytes < c.MaxDownloadBytes {
		return oops.
			With("max_download_bytes", c.MaxDownloadBytes, "max_upload_bytes", c.MaxUploadBytes).
			Errorf("invalid video size thresholds")
	}
	if c.Workers < 1 {
		return oops.With("workers", c.Workers).Errorf("workers must be positive")
	}
	return nil
}

// String hides the bot token so the config can be logged.
func (c *Config) String() string {
	return fmt.Sprintf("Config{DeveloperID:%d Private:%t Storage:%s Port:%s ScrapeAPI:%s Workers:%d Env:%s}",
		c.DeveloperID, c.IsBotPrivate, c.StoragePath, c.HTTPPort, c.ScrapeAPIURL, c.Workers, c.AppEnv)
}
