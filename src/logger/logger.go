package logger

import (
	"os"
	"strings"
	"sync"

	"coin-market-api/src/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality
type Logger struct {
	name  string
	sugar *zap.SugaredLogger
}

var (
	// one rotating writer per file, shared by every component logger
	writers   = make(map[string]zapcore.WriteSyncer)
	writersMu sync.Mutex
)

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance. cfg may be nil (stdout, INFO).
func NewLogger(cfg *models.MConfig, name string) *Logger {
	level := zapcore.InfoLevel
	var logCfg models.MLoggingConfig
	if cfg != nil {
		level = parseLevel(cfg.LogLevel)
		logCfg = cfg.Logging
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if logCfg.JSON {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}
	if logCfg.File != "" {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), fileWriter(logCfg), level))
	}

	base := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{
		name:  name,
		sugar: base.Named(name).Sugar(),
	}
}

// -----------------------------------------------------------------------------

// NewNop returns a logger that discards everything, for tests.
func NewNop(name string) *Logger {
	return &Logger{name: name, sugar: zap.NewNop().Sugar()}
}

// -----------------------------------------------------------------------------

func fileWriter(cfg models.MLoggingConfig) zapcore.WriteSyncer {
	writersMu.Lock()
	defer writersMu.Unlock()

	if w, ok := writers[cfg.File]; ok {
		return w
	}
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
		LocalTime:  true,
	})
	writers[cfg.File] = w
	return w
}

// -----------------------------------------------------------------------------

func parseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARNING", "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// -----------------------------------------------------------------------------

// Name returns the component name the logger was created with
func (l *Logger) Name() string {
	return l.name
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// -----------------------------------------------------------------------------

// Infow logs a message with key/value context
func (l *Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.sugar.Fatalf(format, args...)
}

// -----------------------------------------------------------------------------

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
