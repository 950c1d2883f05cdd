package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queueless/internal/config"
)

func TestNew(t *testing.T) {
	app := config.AppConfig{Name: "queueless", Environment: "test", Version: "0.1.0"}

	t.Run("stdout json", func(t *testing.T) {
		logger, closer, err := New(config.LoggingConfig{Level: "info"}, app)
		require.NoError(t, err)
		assert.NotNil(t, logger)
		assert.Nil(t, closer)
	})

	t.Run("console stderr", func(t *testing.T) {
		logger, closer, err := New(config.LoggingConfig{Level: "debug", Output: "stderr", Format: "console"}, app)
		require.NoError(t, err)
		assert.NotNil(t, logger)
		assert.Nil(t, closer)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		logger, closer, err := New(config.LoggingConfig{Level: "warn", Output: "file", FilePath: path}, app)
		require.NoError(t, err)
		require.NotNil(t, closer)

		logger.Warn().Str("company", "acme").Msg("slow availability query")
		require.NoError(t, closer.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"company":"acme"`)
		assert.Contains(t, string(data), `"app":"queueless"`)
	})

	t.Run("file without path", func(t *testing.T) {
		_, _, err := New(config.LoggingConfig{Output: "file"}, app)
		assert.Error(t, err)
	})
}
