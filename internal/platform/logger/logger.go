package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Auroral0810/LaTexia-sub000/internal/config"
)

// ParseLevel maps a configured level name to a slog level.
// Unknown names fall back to info and ok is false.
func ParseLevel(name string) (level slog.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Setup initializes the application's logging system. It builds a JSON
// handler by default or a colourised text handler when log.format is "text",
// optionally tees output into a rotating file, and installs the result as
// the slog default.
func Setup(serverCfg config.ServerConfig, logCfg config.LogConfig) (*slog.Logger, error) {
	level, ok := ParseLevel(serverCfg.LogLevel)

	var out io.Writer = os.Stdout
	if logCfg.File != "" {
		out = io.MultiWriter(os.Stdout, newRotatingFile(logCfg))
	}

	logger := slog.New(newHandler(out, logCfg.Format, level))
	slog.SetDefault(logger)

	if !ok {
		logger.Warn("invalid log level configured, using default level",
			slog.String("configured_level", serverCfg.LogLevel),
			slog.String("default_level", "info"))
	}

	return logger, nil
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	if strings.EqualFold(format, "text") {
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
			NoColor:    !isTerminal(w),
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

func newRotatingFile(cfg config.LogConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
