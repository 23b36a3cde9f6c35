package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v3"

	_ "github.com/samcharles93/tokchat/internal/backend/ngram"
	_ "github.com/samcharles93/tokchat/internal/backend/toy"
	"github.com/samcharles93/tokchat/internal/version"
)

func main() {
	app := &cli.Command{
		Name:           "tokchat",
		Usage:          "Interactive token-by-token chat over a pluggable language-model backend",
		Version:        version.String(),
		Flags:          loggingFlags(),
		DefaultCommand: "chat",
		Commands: []*cli.Command{
			chatCmd(),
			trainCmd(),
			versionCmd(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := app.Run(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
