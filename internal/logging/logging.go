// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"habit-tracker/internal/config"
)

// Setup points the global logger at stderr and, when cfg.File is set, at a
// rotating log file as well. The returned closer flushes the file.
func Setup(cfg config.LogConfig) (io.Closer, error) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	console := zerolog.ConsoleWriter{Out: os.Stderr}
	if cfg.File == "" {
		log.Logger = log.Output(console)
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    orDefault(cfg.MaxSizeMB, 10), // megabytes
		MaxBackups: orDefault(cfg.MaxBackups, 3),
		MaxAge:     orDefault(cfg.MaxAgeDays, 28), // days
		Compress:   true,
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, fileWriter)).
		With().
		Timestamp().
		Logger()

	return fileWriter, nil
}

// ParseLevel maps a config level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
