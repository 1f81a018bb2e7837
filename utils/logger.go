package utils

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logMu sync.RWMutex
	log   *zap.Logger
)

func init() {
	// До вызова InitLogger пишем в stdout с уровнем info
	l, err := buildLogger("info", []string{"stdout"})
	if err != nil {
		l = zap.NewNop()
	}
	log = l
}

// InitLogger перенастраивает логгер: уровень (debug, info, warn, error) и пути вывода
func InitLogger(level string, outputs []string) error {
	l, err := buildLogger(level, outputs)
	if err != nil {
		return fmt.Errorf("ошибка инициализации логгера: %w", err)
	}

	logMu.Lock()
	old := log
	log = l
	logMu.Unlock()

	_ = old.Sync()
	return nil
}

// SetLogger подменяет логгер, например на zaptest/observer в тестах
func SetLogger(l *zap.Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	log = l
}

// Logger возвращает текущий логгер для записи структурированных полей
func Logger() *zap.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return log
}

// SyncLogger сбрасывает буферы логгера
func SyncLogger() {
	_ = Logger().Sync()
}

func buildLogger(level string, outputs []string) (*zap.Logger, error) {
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(parseLevel(level))
	config.Encoding = "json"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.StacktraceKey = ""
	config.OutputPaths = outputs
	config.ErrorOutputPaths = []string{"stderr"}

	return config.Build(zap.AddCallerSkip(1))
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zap.DebugLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// LogInfo логирует информационное сообщение
func LogInfo(format string, v ...interface{}) {
	Logger().Info(fmt.Sprintf(format, v...))
}

// LogWarn логирует предупреждение
func LogWarn(format string, v ...interface{}) {
	Logger().Warn(fmt.Sprintf(format, v...))
}

// LogError логирует сообщение об ошибке
func LogError(format string, v ...interface{}) {
	Logger().Error(fmt.Sprintf(format, v...))
}

// LogDebug логирует отладочное сообщение
func LogDebug(format string, v ...interface{}) {
	Logger().Debug(fmt.Sprintf(format, v...))
}

// LogOperation логирует операцию с длительностью
func LogOperation(operation string, startTime time.Time, err error) {
	duration := time.Since(startTime)
	if err != nil {
		Logger().Error("operation failed",
			zap.String("operation", operation),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}
	Logger().Info("operation completed",
		zap.String("operation", operation),
		zap.Duration("duration", duration),
	)
}
