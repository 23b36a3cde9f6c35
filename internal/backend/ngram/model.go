// Package ngram implements a count-based n-gram language model backend.
// Scores use stupid backoff over token contexts of up to Order-1 tokens and
// are returned as log scores, which behave like logits for sampling.
package ngram

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultOrder = 3
	MaxOrder     = 4

	// backoff scales the score of a lower-order estimate each time the
	// model drops one context token.
	backoff = 0.4
)

// Model holds the n-gram counts. Tables[k] maps a context of k tokens to the
// counts of the tokens that followed it.
type Model struct {
	Order     int                         `json:"order"`
	Vocab     int                         `json:"vocab"`
	BOS       int                         `json:"bos"`
	EOS       int                         `json:"eos"`
	Tokenizer string                      `json:"tokenizer"`
	Tables    []map[string]map[int]uint32 `json:"tables"`

	unigram []float64
}

func newModel(order, vocab, bos, eos int, tok string) *Model {
	m := &Model{
		Order:     order,
		Vocab:     vocab,
		BOS:       bos,
		EOS:       eos,
		Tokenizer: tok,
		Tables:    make([]map[string]map[int]uint32, order),
	}
	for k := range m.Tables {
		m.Tables[k] = map[string]map[int]uint32{}
	}
	return m
}

func (m *Model) validate() error {
	if m.Order < 1 || m.Order > MaxOrder {
		return fmt.Errorf("ngram: order %d outside [1, %d]", m.Order, MaxOrder)
	}
	if m.Vocab <= 0 {
		return fmt.Errorf("ngram: vocab size %d", m.Vocab)
	}
	if m.EOS < 0 || m.EOS >= m.Vocab {
		return fmt.Errorf("ngram: eos %d outside vocab %d", m.EOS, m.Vocab)
	}
	if len(m.Tables) != m.Order {
		return fmt.Errorf("ngram: %d tables for order %d", len(m.Tables), m.Order)
	}
	for k, table := range m.Tables {
		if table == nil {
			m.Tables[k] = map[string]map[int]uint32{}
			continue
		}
		for ctx, next := range table {
			for id := range next {
				if id < 0 || id >= m.Vocab {
					return fmt.Errorf("ngram: table %d context %q: token %d outside vocab", k, ctx, id)
				}
			}
		}
	}
	return nil
}

// prepare caches the add-one unigram distribution every backoff chain ends in.
func (m *Model) prepare() {
	m.unigram = make([]float64, m.Vocab)
	counts := m.Tables[0][""]
	var total float64
	for _, c := range counts {
		total += float64(c)
	}
	denom := total + float64(m.Vocab)
	for i := range m.unigram {
		m.unigram[i] = (float64(counts[i]) + 1) / denom
	}
}

// Scores writes the log score of every token given history into dst and
// returns it. Only the last Order-1 tokens of history are used.
func (m *Model) Scores(dst []float32, history []int) []float32 {
	if cap(dst) < m.Vocab {
		dst = make([]float32, m.Vocab)
	}
	dst = dst[:m.Vocab]
	if m.unigram == nil {
		m.prepare()
	}

	s := make([]float64, m.Vocab)
	copy(s, m.unigram)
	for k := 1; k < m.Order && k <= len(history); k++ {
		next, ok := m.Tables[k][contextKey(history[len(history)-k:])]
		if !ok {
			// Longer contexts containing this one cannot match either.
			break
		}
		var total float64
		for _, c := range next {
			total += float64(c)
		}
		for i := range s {
			s[i] *= backoff
		}
		for id, c := range next {
			s[id] = float64(c) / total
		}
	}
	for i, v := range s {
		dst[i] = float32(math.Log(v))
	}
	return dst
}

func contextKey(ctx []int) string {
	if len(ctx) == 0 {
		return ""
	}
	var b strings.Builder
	for i, id := range ctx {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}

// add counts every n-gram of seq for context lengths 0..Order-1. BOS is
// never counted as a prediction.
func (m *Model) add(seq []int) {
	for i := range seq {
		if seq[i] == m.BOS {
			continue
		}
		for k := 0; k < m.Order && k <= i; k++ {
			key := contextKey(seq[i-k : i])
			next := m.Tables[k][key]
			if next == nil {
				next = map[int]uint32{}
				m.Tables[k][key] = next
			}
			next[seq[i]]++
		}
	}
}

// merge folds the counts of o into m.
func (m *Model) merge(o *Model) {
	for k, table := range o.Tables {
		for key, next := range table {
			dst := m.Tables[k][key]
			if dst == nil {
				dst = make(map[int]uint32, len(next))
				m.Tables[k][key] = dst
			}
			for id, c := range next {
				dst[id] += c
			}
		}
	}
}
