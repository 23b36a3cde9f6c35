package ngram

import (
	"context"
	"fmt"
	"strings"

	"github.com/samcharles93/tokchat/internal/backend"
	"github.com/samcharles93/tokchat/internal/tokenizer"
)

func init() {
	backend.Register(backend.NGram, func() backend.Backend { return New() })
}

// Backend serves a Model through the backend contract. It keeps the last
// Order-1 evaluated tokens as the scoring context.
type Backend struct {
	model   *Model
	tok     tokenizer.Tokenizer
	pos     backend.Positions
	history []int
	logits  []float32
}

func New() *Backend { return &Backend{} }

// FromModel wraps an already built model, mainly for tests and the train
// command.
func FromModel(m *Model, contextSize int) (*Backend, error) {
	b := New()
	if err := b.attach(m, "", contextSize); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Backend) Name() string { return backend.NGram }

func (b *Backend) Load(path string, params backend.Params) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("ngram: model path is required")
	}
	m, err := LoadPath(context.Background(), path, TrainOptions{
		Order:     DefaultOrder,
		Tokenizer: params.Tokenizer,
		Threads:   params.Threads,
	})
	if err != nil {
		return err
	}
	return b.attach(m, params.Tokenizer, params.ContextSize)
}

func (b *Backend) attach(m *Model, tokName string, contextSize int) error {
	if tokName != "" && m.Tokenizer != "" && !strings.EqualFold(tokName, m.Tokenizer) {
		return fmt.Errorf("ngram: model was trained with tokenizer %q, not %q", m.Tokenizer, tokName)
	}
	tok, err := tokenizer.Open(m.Tokenizer)
	if err != nil {
		return err
	}
	if tok.VocabSize() != m.Vocab {
		return fmt.Errorf("ngram: model vocab %d does not match tokenizer vocab %d", m.Vocab, tok.VocabSize())
	}
	b.model = m
	b.tok = tok
	b.pos = backend.Positions{Size: contextSize}
	b.history = make([]int, 0, m.Order)
	b.logits = m.Scores(b.logits, nil)
	return nil
}

// Model returns the loaded model, or nil.
func (b *Backend) Model() *Model { return b.model }

func (b *Backend) Tokenize(text string, addBOS bool) ([]int, error) {
	if b.model == nil {
		return nil, backend.ErrNotLoaded
	}
	return tokenizer.EncodeWithBOS(b.tok, text, addBOS)
}

func (b *Backend) Detokenize(tokens []int) (string, error) {
	if b.model == nil {
		return "", backend.ErrNotLoaded
	}
	return b.tok.Decode(tokens)
}

func (b *Backend) Reset() {
	b.pos.Rewind()
	b.history = b.history[:0]
	if b.model != nil {
		b.logits = b.model.Scores(b.logits, nil)
	}
}

func (b *Backend) Evaluate(tokens []int) error {
	if b.model == nil {
		return backend.ErrNotLoaded
	}
	if len(tokens) == 0 {
		return nil
	}
	if err := backend.CheckTokens(tokens, b.model.Vocab); err != nil {
		return err
	}
	if err := b.pos.Reserve(len(tokens)); err != nil {
		return err
	}
	keep := b.model.Order - 1
	b.history = append(b.history, tokens...)
	if len(b.history) > keep {
		b.history = append(b.history[:0], b.history[len(b.history)-keep:]...)
	}
	b.logits = b.model.Scores(b.logits, b.history)
	return nil
}

func (b *Backend) Logits() []float32 {
	out := make([]float32, len(b.logits))
	copy(out, b.logits)
	return out
}

func (b *Backend) VocabSize() int {
	if b.model == nil {
		return 0
	}
	return b.model.Vocab
}

func (b *Backend) EOS() int {
	if b.model == nil {
		return -1
	}
	return b.model.EOS
}

func (b *Backend) BOS() int {
	if b.model == nil {
		return -1
	}
	return b.model.BOS
}

func (b *Backend) Close() error {
	b.model = nil
	b.history = nil
	b.logits = nil
	return nil
}
