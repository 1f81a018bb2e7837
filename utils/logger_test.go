package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	prev := Logger()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })
	return logs
}

func TestLogHelpers(t *testing.T) {
	logs := observe(t, zap.InfoLevel)

	LogInfo("Клиент %d зарегистрирован", 7)
	LogWarn("Строка %d пропущена", 3)
	LogError("Ошибка: %v", errors.New("boom"))
	LogDebug("не попадет в журнал")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "Клиент 7 зарегистрирован", entries[0].Message)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, "Ошибка: boom", entries[2].Message)
}

func TestLogOperation(t *testing.T) {
	logs := observe(t, zap.DebugLevel)

	LogOperation("ingest_customers", time.Now(), nil)
	LogOperation("ingest_loans", time.Now(), errors.New("file locked"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "ingest_customers", entries[0].ContextMap()["operation"])
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, "file locked", entries[1].ContextMap()["error"])
}

func TestInitLogger(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	require.NoError(t, InitLogger("debug", []string{"stderr"}))
	assert.True(t, Logger().Core().Enabled(zap.DebugLevel))

	require.NoError(t, InitLogger("error", nil))
	assert.False(t, Logger().Core().Enabled(zap.WarnLevel))
}
