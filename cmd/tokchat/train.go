package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tokchat/internal/backend/ngram"
)

func trainCmd() *cli.Command {
	var (
		corpusPath string
		outPath    string
		order      int64
		tokName    string
		threads    int64
	)
	return &cli.Command{
		Name:  "train",
		Usage: "Build an n-gram model file from a text corpus",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "corpus",
				Aliases:     []string{"i"},
				Usage:       "UTF-8 text corpus; blank lines separate documents",
				Required:    true,
				Destination: &corpusPath,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output model path (.json)",
				Required:    true,
				Destination: &outPath,
			},
			&cli.Int64Flag{
				Name:        "order",
				Usage:       fmt.Sprintf("n-gram order (1-%d)", ngram.MaxOrder),
				Value:       ngram.DefaultOrder,
				Destination: &order,
			},
			&cli.StringFlag{
				Name:        "tokenizer",
				Usage:       "tokenizer (byte, tiktoken:<encoding>)",
				Value:       "byte",
				Destination: &tokName,
			},
			&cli.Int64Flag{
				Name:        "threads",
				Usage:       "documents counted in parallel",
				Value:       int64(runtime.NumCPU()),
				Destination: &threads,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			log, err := newLogger(os.Stderr)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			out := expandHome(outPath)
			if !strings.EqualFold(filepath.Ext(out), ".json") {
				return cli.Exit("error: --out must end in .json", 1)
			}
			raw, err := os.ReadFile(expandHome(corpusPath))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: read corpus: %v", err), 1)
			}

			start := time.Now()
			m, err := ngram.Train(ctx, string(raw), ngram.TrainOptions{
				Order:     int(order),
				Tokenizer: tokName,
				Threads:   int(threads),
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: train: %v", err), 1)
			}
			if err := m.Save(out); err != nil {
				return cli.Exit(fmt.Sprintf("error: save model: %v", err), 1)
			}

			contexts := 0
			for _, t := range m.Tables {
				contexts += len(t)
			}
			log.Info("model written",
				"out", out,
				"order", m.Order,
				"tokenizer", m.Tokenizer,
				"vocab", m.Vocab,
				"contexts", contexts,
				"documents", len(ngram.SplitDocuments(string(raw))),
				"took", time.Since(start),
			)
			return nil
		},
	}
}
