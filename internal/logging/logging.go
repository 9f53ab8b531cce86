// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls Setup. Zero values give an info level JSON logger on stderr.
type Options struct {
	Env   string // "DEV" switches to the console writer
	Level string
	File  string // rotated log file, in addition to stderr
}

// Setup builds the logger described by opts and installs it as log.Logger.
func Setup(opts Options) zerolog.Logger {
	var console io.Writer = os.Stderr
	if strings.EqualFold(opts.Env, "DEV") {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	writers := []io.Writer{console}
	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    20, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(opts.Level)).
		With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}
