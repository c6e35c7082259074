package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level string // debug|info|warn|error
	Env   string // development | production
	App   string
}

// ParseLevel tolera valores raros y cae a info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "info", "":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New construye el logger zap según entorno:
// - production: JSON con timestamps ISO8601
// - development: consola legible con niveles en color
func New(opts Options) (*zap.Logger, error) {
	level := ParseLevel(opts.Level)

	var cfg zap.Config
	if strings.EqualFold(opts.Env, "production") {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	fields := []zap.Field{}
	if strings.TrimSpace(opts.App) != "" {
		fields = append(fields, zap.String("app", strings.TrimSpace(opts.App)))
	}

	return cfg.Build(zap.Fields(fields...))
}

// NewFromEnv crea logger desde env:
// - LOG_LEVEL=debug|info|warn|error (default info)
// - APP_ENV=development|production (default development)
// - APP_NAME (opcional)
func NewFromEnv() (*zap.Logger, error) {
	return New(Options{
		Level: os.Getenv("LOG_LEVEL"),
		Env:   os.Getenv("APP_ENV"),
		App:   os.Getenv("APP_NAME"),
	})
}
