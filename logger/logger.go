package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/statsbridge/statsbridge/utils"
)

// InitLogger builds a handler writing to stdout and installs it as the default slog logger
func InitLogger(format string, level string) (slog.Handler, error) {
	handler, err := NewHandler(os.Stdout, format, level, utils.IsTTY())

	if err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(handler))

	return handler, nil
}

// NewHandler returns a text (tint) or JSON handler for the given writer
func NewHandler(w io.Writer, format string, level string, colorize bool) (slog.Handler, error) {
	logLevel, err := parseLevel(level)

	if err != nil {
		return nil, err
	}

	switch format {
	case "text":
		return tint.NewHandler(w, &tint.Options{
			Level:      logLevel,
			NoColor:    !colorize,
			TimeFormat: "2006-01-02 15:04:05.000",
		}), nil
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}), nil
	}

	return nil, fmt.Errorf("unknown log format: %s.\nAvailable formats are: text, json", format)
}

var LevelNames = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func parseLevel(level string) (slog.Level, error) {
	lvl, ok := LevelNames[level]
	if !ok {
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s.\nAvailable levels are: debug, info, warn, error", level)
	}

	return lvl, nil
}
