package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestMustLoad(t *testing.T) {
	t.Run("Fills defaults for missing keys", func(t *testing.T) {
		// Given: a config file that only sets the log level
		path := writeConfig(t, "log-level: debug\n")

		// When: the config is loaded
		conf := MustLoad(path)

		// Then: the remaining values come from the defaults
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "5000", conf.HTTPPort)
		assert.Equal(t, "5001", conf.SocketPort)
		assert.Equal(t, 10*time.Second, conf.ShutdownTimeout)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, 24*time.Hour, conf.Redis.GameTTL)
		assert.Equal(t, "sqlite", conf.Storage.Driver)
		assert.Equal(t, 3*time.Second, conf.Storage.WriteTimeout)
		assert.True(t, conf.Publisher.Enabled)
		assert.Equal(t, "game-moves", conf.Publisher.Topic)
		assert.Equal(t, 256, conf.Publisher.QueueSize)
		assert.Equal(t, uint64(3), conf.Publisher.MaxRetries)
		assert.Equal(t, 100*time.Millisecond, conf.Publisher.InitialInterval)
	})

	t.Run("Reads nested sections", func(t *testing.T) {
		path := writeConfig(t, `
redis:
  host: cache
  port: "6380"
storage:
  driver: postgres
  dsn: postgres://user:pass@db:5432/connect4
publisher:
  enabled: false
  queue-size: 8
`)

		conf := MustLoad(path)

		assert.Equal(t, "cache:6380", conf.Redis.GetRedisAddr())
		assert.Equal(t, "postgres", conf.Storage.Driver)
		assert.Equal(t, "postgres://user:pass@db:5432/connect4", conf.Storage.DSN)
		assert.False(t, conf.Publisher.Enabled)
		assert.Equal(t, 8, conf.Publisher.QueueSize)
	})

	t.Run("Panics when the file is missing", func(t *testing.T) {
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "missing.yml"))
		})
	})
}

func TestConfig_SlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	}

	for name, want := range cases {
		conf := &Config{LogLevel: name}

		level, err := conf.SlogLevel()

		require.NoError(t, err, name)
		assert.Equal(t, want, level, name)
	}

	t.Run("Unknown level", func(t *testing.T) {
		conf := &Config{LogLevel: "verbose"}

		level, err := conf.SlogLevel()

		require.Error(t, err)
		assert.Equal(t, slog.LevelInfo, level)
	})
}
