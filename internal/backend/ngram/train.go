package ngram

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/samcharles93/tokchat/internal/tokenizer"
)

// TrainOptions configures Train.
type TrainOptions struct {
	Order int
	// Tokenizer is a tokenizer.Open name; empty selects the byte tokenizer.
	Tokenizer string
	// Threads bounds the number of documents tokenized and counted at once.
	Threads int
}

// SplitDocuments splits a corpus on blank lines. Each document becomes one
// BOS ... EOS training sequence.
func SplitDocuments(corpus string) []string {
	corpus = strings.ReplaceAll(corpus, "\r\n", "\n")
	var docs []string
	for _, d := range strings.Split(corpus, "\n\n") {
		if d = strings.TrimSpace(d); d != "" {
			docs = append(docs, d)
		}
	}
	return docs
}

// Train builds a model from corpus. Documents are counted in parallel shards
// that are merged once every shard is done.
func Train(ctx context.Context, corpus string, opts TrainOptions) (*Model, error) {
	if opts.Order == 0 {
		opts.Order = DefaultOrder
	}
	if opts.Order < 1 || opts.Order > MaxOrder {
		return nil, fmt.Errorf("ngram: order %d outside [1, %d]", opts.Order, MaxOrder)
	}
	if strings.TrimSpace(opts.Tokenizer) == "" {
		opts.Tokenizer = "byte"
	}
	tok, err := tokenizer.Open(opts.Tokenizer)
	if err != nil {
		return nil, err
	}
	docs := SplitDocuments(corpus)
	if len(docs) == 0 {
		return nil, fmt.Errorf("ngram: corpus is empty")
	}

	threads := max(opts.Threads, 1)
	shards := min(threads, len(docs))
	parts := make([]*Model, shards)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for s := 0; s < shards; s++ {
		g.Go(func() error {
			part := newModel(opts.Order, tok.VocabSize(), tok.BOSID(), tok.EOSID(), opts.Tokenizer)
			for i := s; i < len(docs); i += shards {
				if err := gctx.Err(); err != nil {
					return err
				}
				seq, err := tokenizer.EncodeWithBOS(tok, docs[i], true)
				if err != nil {
					return fmt.Errorf("ngram: tokenize document %d: %w", i, err)
				}
				part.add(append(seq, tok.EOSID()))
			}
			parts[s] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := parts[0]
	for _, p := range parts[1:] {
		m.merge(p)
	}
	m.prepare()
	return m, nil
}
