package main

import (
	"io"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tokchat/internal/logger"
)

var (
	logLevel  string
	logFormat string
	debug     bool
)

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       logger.FormatPretty,
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// newLogger builds the stderr logger from the logging flags. Pretty output
// drops colour when w is not a terminal.
func newLogger(w io.Writer) (logger.Logger, error) {
	level := logger.ParseLevel(logLevel)
	if debug {
		level = slog.LevelDebug
	}
	if (logFormat == "" || logFormat == logger.FormatPretty) && !isTerminal(w) {
		return logger.New(logger.NewPrettyHandler(w, &slog.HandlerOptions{Level: level}).WithoutColor()), nil
	}
	return logger.ForFormat(logFormat, level, w)
}
