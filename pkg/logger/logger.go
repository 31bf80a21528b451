package logger

// Structured JSON logging via log/slog.
import (
	"fmt"
	"log/slog"
	"os"

	"mail_trans_engine/config"
)

// New builds the application logger from config and installs it as the slog
// default. When output is a file path under logs/, the directory is created.
func New(cfg config.LogConfig) (*slog.Logger, error) {
	level := slog.LevelError
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	}

	opts := slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	}

	var l *slog.Logger
	switch cfg.Output {
	case "stdout":
		l = slog.New(slog.NewJSONHandler(os.Stdout, &opts))
	case "stderr", "":
		l = slog.New(slog.NewJSONHandler(os.Stderr, &opts))
	default:
		if _, err := os.Stat("logs"); os.IsNotExist(err) {
			if err = os.Mkdir("logs", os.ModePerm); err != nil {
				return nil, fmt.Errorf("mkdir logs: %w", err)
			}
		}
		logFile, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l = slog.New(slog.NewJSONHandler(logFile, &opts))
	}

	slog.SetDefault(l)
	return l, nil
}
