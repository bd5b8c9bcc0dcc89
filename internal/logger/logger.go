package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the application logger
type Options struct {
	Level          string // debug, info, warn, error
	File           string // optional JSON log file, rotated
	FileMaxSize    int    // megabytes
	FileMaxBackups int
	FileMaxAge     int // days
}

// New builds a console logger, tee'd into a rotated JSON file when File is set.
// The returned closer flushes and closes the file.
func New(opts Options) (*zap.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	if opts.File == "" {
		return newZap(os.Stdout, nil, level), nopCloser{}, nil
	}

	rotationLog := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.FileMaxSize,
		MaxBackups: opts.FileMaxBackups,
		MaxAge:     opts.FileMaxAge,
	}
	return newZap(os.Stdout, rotationLog, level), rotationLog, nil
}

// ParseLevel maps a level name to a zap level; empty means info
func ParseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

func newZap(console io.Writer, file io.Writer, level zapcore.Level) *zap.Logger {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(config), zapcore.AddSync(console), level)
	core := consoleCore
	if file != nil {
		fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(config), zapcore.AddSync(file), level)
		core = zapcore.NewTee(consoleCore, fileCore)
	}

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
