// Package logger is the zap wrapper shared by every coursed component.
// Handlers, the service layer and main all log through *Logger so that
// key/value pairs and levels stay uniform across the process.
package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Logger exposes the structured (key/value) half of zap's sugared API.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New builds the process logger. "prod"/"production" gives JSON at info
// level; any other mode is a console logger at debug level. Every record
// carries a "service" field when service is non-empty.
func New(mode, service string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	if service != "" {
		cfg.InitialFields = map[string]interface{}{"service": service}
	}
	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return FromZap(zl), nil
}

// FromZap wraps an existing zap logger, e.g. one built on an observer core.
func FromZap(l *zap.Logger) *Logger {
	return &Logger{SugaredLogger: l.Sugar()}
}

func Nop() *Logger { return FromZap(zap.NewNop()) }

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.SugaredLogger.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.SugaredLogger.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.SugaredLogger.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.SugaredLogger.Errorw(msg, kv...) }

// Fatal logs and exits the process. Only main should call it.
func (l *Logger) Fatal(msg string, kv ...interface{}) { l.SugaredLogger.Fatalw(msg, kv...) }

// With returns a child logger that prefixes kv to every record.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(kv...)}
}
