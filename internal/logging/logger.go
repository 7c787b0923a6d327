package logging

import (
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Dir     string // rotated JSON log file goes here; empty disables it
	Level   string
	Console bool // also log to stderr
}

// ParseLevel falls back to info for unknown names.
func ParseLevel(s string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func NewLogger(opts Options) (*zap.Logger, error) {
	level := ParseLevel(opts.Level)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, err
		}
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, "twitch-alerts.log"),
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), w, level))
	}

	if opts.Console || len(cores) == 0 {
		cores = append(cores, zapcore.NewCore(consoleEncoder(encCfg, os.Stderr.Fd()), zapcore.Lock(os.Stderr), level))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// consoleEncoder is human readable on a terminal and JSON when piped.
func consoleEncoder(cfg zapcore.EncoderConfig, fd uintptr) zapcore.Encoder {
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}
