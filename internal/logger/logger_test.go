package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	log, err := New("local", "warn", "")
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	_, err = New("prod", "loud", "")
	assert.Error(t, err)
}

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.log")

	log, err := New("prod", "info", path)
	require.NoError(t, err)
	log.Info("сценарий завершён", zap.String("scenario", "login"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario":"login"`)
	assert.Contains(t, string(data), `"level":"INFO"`)
}

func TestNamed(t *testing.T) {
	log := Nop().Named("runner")
	assert.NotNil(t, log.Logger)
}
