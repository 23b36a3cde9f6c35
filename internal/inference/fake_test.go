package inference

import (
	"strings"

	"github.com/samcharles93/tokchat/internal/backend"
	"github.com/samcharles93/tokchat/internal/tplparser"
)

const (
	fakeBOS    = 0
	fakeEOS    = 1
	fakeFiller = 5
	fakeVocab  = 8
)

var fakePieces = map[int]string{2: "he", 3: "llo", 4: " world", fakeFiller: "x"}

// scriptedBackend turns every prompt byte into fakeFiller and makes the
// greedy choice follow script, then EOS.
type scriptedBackend struct {
	script []int

	// failAt makes the n-th Evaluate call (1-based) return failErr.
	failAt  int
	failErr error
	// panicIn names a method that panics.
	panicIn string
	// onEvaluate runs before every Evaluate with the tokens submitted.
	onEvaluate func(tokens []int)

	evals   [][]int
	resets  int
	logitsN int
}

func (b *scriptedBackend) Name() string                         { return "scripted" }
func (b *scriptedBackend) Load(string, backend.Params) error    { return nil }
func (b *scriptedBackend) VocabSize() int                       { return fakeVocab }
func (b *scriptedBackend) EOS() int                             { return fakeEOS }
func (b *scriptedBackend) BOS() int                             { return fakeBOS }
func (b *scriptedBackend) Close() error                         { return nil }
func (b *scriptedBackend) Detokenize(ids []int) (string, error) { return fakePieces[ids[0]], nil }

func (b *scriptedBackend) Tokenize(text string, addBOS bool) ([]int, error) {
	if b.panicIn == "Tokenize" {
		panic("tokenize boom")
	}
	var ids []int
	if addBOS {
		ids = append(ids, fakeBOS)
	}
	for range len(text) {
		ids = append(ids, fakeFiller)
	}
	return ids, nil
}

func (b *scriptedBackend) Reset() {
	if b.panicIn == "Reset" {
		panic("reset boom")
	}
	b.resets++
	b.logitsN = 0
}

func (b *scriptedBackend) Evaluate(tokens []int) error {
	if b.panicIn == "Evaluate" {
		panic("evaluate boom")
	}
	if b.onEvaluate != nil {
		b.onEvaluate(tokens)
	}
	b.evals = append(b.evals, append([]int(nil), tokens...))
	if len(b.evals) == b.failAt {
		return b.failErr
	}
	return nil
}

func (b *scriptedBackend) Logits() []float32 {
	next := fakeEOS
	if b.logitsN < len(b.script) {
		next = b.script[b.logitsN]
	}
	b.logitsN++
	out := make([]float32, fakeVocab)
	out[next] = 10
	return out
}

// lastUser formats the conversation as the newest user message only, so
// prompt length is easy to control.
type lastUser struct{}

func (lastUser) Format(msgs []tplparser.Message) (string, error) {
	text, _ := tplparser.LastUserText(msgs)
	return text, nil
}

func greedyParams(maxNew int) Params {
	return Params{TopP: 1, RepeatPenalty: 1, MaxNewTokens: maxNew}
}

func roles(msgs []tplparser.Message) string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return strings.Join(out, ",")
}

func seedOf(v int64) *int64 { return &v }
