// Package toy provides a tiny random-weight language model. It has no model
// file and is used to exercise the generation loop end to end.
package toy

import "math/rand"

// ToyLM embeds the last token and projects it back to vocab logits.
// Forward operates on a single token.
type ToyLM struct {
	Vocab  int
	Hidden int

	Emb  []float32 // [Vocab x Hidden] row-major
	W    []float32 // [Hidden x Vocab] row-major
	Bias []float32 // [Vocab]
}

// NewToyLM builds a model whose weights are derived from seed.
func NewToyLM(vocab, hidden int, seed int64) *ToyLM {
	m := &ToyLM{
		Vocab:  vocab,
		Hidden: hidden,
		Emb:    make([]float32, vocab*hidden),
		W:      make([]float32, hidden*vocab),
		Bias:   make([]float32, vocab),
	}
	fill(m.Emb, seed+11)
	fill(m.W, seed+23)
	return m
}

func fill(dst []float32, seed int64) {
	r := rand.New(rand.NewSource(seed))
	for i := range dst {
		dst[i] = r.Float32()*2 - 1
	}
}

// Row returns the embedding of tok.
func (m *ToyLM) Row(tok int) []float32 {
	return m.Emb[tok*m.Hidden : (tok+1)*m.Hidden]
}

// Forward writes the logits for tok into dst, growing it when needed, and
// returns it. Token ids outside [0, Vocab) wrap around.
func (m *ToyLM) Forward(dst []float32, tok int) []float32 {
	if tok < 0 || tok >= m.Vocab {
		tok %= m.Vocab
		if tok < 0 {
			tok += m.Vocab
		}
	}
	if cap(dst) < m.Vocab {
		dst = make([]float32, m.Vocab)
	}
	dst = dst[:m.Vocab]
	copy(dst, m.Bias)
	h := m.Row(tok)
	for i, hv := range h {
		row := m.W[i*m.Vocab : (i+1)*m.Vocab]
		for j, w := range row {
			dst[j] += hv * w
		}
	}
	return dst
}
