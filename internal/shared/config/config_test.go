package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/reshetovitsme/tweet-media-relay/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv removes key for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_FromEnvironmentWithDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	unsetenv(t, "STORAGE_PATH", "HTTP_PORT", "WORKERS", "MAX_DOWNLOAD_BYTES", "DELIVERY_CHAT_ID", "APP_ENV")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("DEVELOPER_ID", "4242")
	t.Setenv("IS_BOT_PRIVATE", "true")
	t.Setenv("MAX_UPLOAD_BYTES", "62914560")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.TelegramBotToken)
	assert.Equal(t, int64(4242), cfg.DeveloperID)
	assert.True(t, cfg.IsBotPrivate)
	assert.Zero(t, cfg.DeliveryChatID)
	assert.Equal(t, "./data", cfg.StoragePath)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, DefaultMaxDownloadBytes, cfg.MaxDownloadBytes)
	assert.Equal(t, int64(62914560), cfg.MaxUploadBytes)
	assert.Equal(t, AppEnvProduction, cfg.AppEnv)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Equal(t, filepath.Join("data", "tmp"), cfg.TempPath())
}

func TestLoad_RequiredFields(t *testing.T) {
	t.Chdir(t.TempDir())

	unsetenv(t, "TELEGRAM_BOT_TOKEN", "DEVELOPER_ID")
	_, err := Load()
	assert.ErrorIs(t, err, errors.ErrMissingBotToken)

	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	_, err = Load()
	assert.ErrorIs(t, err, errors.ErrMissingDeveloperID)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	unsetenv(t, "TELEGRAM_BOT_TOKEN", "DEVELOPER_ID", "WORKERS", "APP_ENV", "STORAGE_PATH")

	content := "telegram_bot_token: file-token\ndeveloper_id: 7\nworkers: 2\napp_env: DEVELOPMENT\nstorage_path: /var/lib/relay\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.TelegramBotToken)
	assert.Equal(t, int64(7), cfg.DeveloperID)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, AppEnvDevelopment, cfg.AppEnv)
	assert.Equal(t, "/var/lib/relay/tmp", cfg.TempPath())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			TelegramBotToken: "t",
			DeveloperID:      1,
			MaxDownloadBytes: DefaultMaxDownloadBytes,
			MaxUploadBytes:   DefaultMaxUploadBytes,
			Workers:          1,
		}
	}

	assert.NoError(t, valid().Validate())

	inverted := valid()
	inverted.MaxUploadBytes = inverted.MaxDownloadBytes - 1
	assert.Error(t, inverted.Validate())

	noWorkers := valid()
	noWorkers.Workers = 0
	assert.Error(t, noWorkers.Validate())
}

func TestString_HidesToken(t *testing.T) {
	cfg := &Config{TelegramBotToken: "secret-token", DeveloperID: 1}
	assert.NotContains(t, cfg.String(), "secret-token")
}
