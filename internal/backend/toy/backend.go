package toy

import (
	"github.com/samcharles93/tokchat/internal/backend"
	"github.com/samcharles93/tokchat/internal/tokenizer"
)

const (
	DefaultHidden = 16
	defaultSeed   = 1
)

func init() {
	backend.Register(backend.Toy, func() backend.Backend { return New() })
}

// Backend serves a ToyLM over the byte tokenizer. The load path is only a
// label; weights come from the seed.
type Backend struct {
	Hidden int

	lm     *ToyLM
	tok    tokenizer.Byte
	pos    backend.Positions
	logits []float32
}

func New() *Backend { return &Backend{Hidden: DefaultHidden} }

func (b *Backend) Name() string { return backend.Toy }

func (b *Backend) Load(_ string, params backend.Params) error {
	seed := params.Seed
	if seed <= 0 {
		seed = defaultSeed
	}
	hidden := b.Hidden
	if hidden <= 0 {
		hidden = DefaultHidden
	}
	b.tok = tokenizer.NewByte()
	b.lm = NewToyLM(b.tok.VocabSize(), hidden, seed)
	b.pos = backend.Positions{Size: params.ContextSize}
	b.Reset()
	return nil
}

func (b *Backend) Tokenize(text string, addBOS bool) ([]int, error) {
	if b.lm == nil {
		return nil, backend.ErrNotLoaded
	}
	return tokenizer.EncodeWithBOS(b.tok, text, addBOS)
}

func (b *Backend) Detokenize(tokens []int) (string, error) {
	if b.lm == nil {
		return "", backend.ErrNotLoaded
	}
	return b.tok.Decode(tokens)
}

func (b *Backend) Reset() {
	b.pos.Rewind()
	if b.lm != nil {
		b.logits = b.lm.Forward(b.logits, b.tok.BOSID())
	}
}

func (b *Backend) Evaluate(tokens []int) error {
	if b.lm == nil {
		return backend.ErrNotLoaded
	}
	if len(tokens) == 0 {
		return nil
	}
	if err := backend.CheckTokens(tokens, b.lm.Vocab); err != nil {
		return err
	}
	if err := b.pos.Reserve(len(tokens)); err != nil {
		return err
	}
	b.logits = b.lm.Forward(b.logits, tokens[len(tokens)-1])
	return nil
}

func (b *Backend) Logits() []float32 {
	out := make([]float32, len(b.logits))
	copy(out, b.logits)
	return out
}

func (b *Backend) VocabSize() int {
	if b.lm == nil {
		return 0
	}
	return b.lm.Vocab
}

func (b *Backend) EOS() int {
	if b.lm == nil {
		return -1
	}
	return b.tok.EOSID()
}

func (b *Backend) BOS() int {
	if b.lm == nil {
		return -1
	}
	return b.tok.BOSID()
}

func (b *Backend) Close() error {
	b.lm = nil
	b.logits = nil
	return nil
}
