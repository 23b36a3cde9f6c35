package ngram

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/tokchat/internal/backend"
	"github.com/samcharles93/tokchat/internal/logits"
	"github.com/samcharles93/tokchat/internal/tokenizer"
)

const corpus = "ab\n\nab\r\n\r\nab\n\n\n"

func trained(t *testing.T, threads int) *Model {
	t.Helper()
	m, err := Train(context.Background(), corpus, TrainOptions{Order: 3, Threads: threads})
	require.NoError(t, err)
	return m
}

func TestSplitDocuments(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"ab", "ab", "ab"}, SplitDocuments(corpus))
	assert.Empty(t, SplitDocuments("\n\n  \n"))
}

func TestTrainShardsAgree(t *testing.T) {
	t.Parallel()

	one := trained(t, 1)
	many := trained(t, 4)
	assert.Equal(t, one.Tables, many.Tables)
	assert.Equal(t, uint32(3), one.Tables[0][""][int('a')])
	assert.Equal(t, uint32(3), one.Tables[2]["97,98"][tokenizer.ByteEOS])
	assert.Zero(t, one.Tables[0][""][tokenizer.ByteBOS], "BOS is never predicted")
}

func TestTrainRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := Train(context.Background(), "  ", TrainOptions{})
	assert.Error(t, err)
	_, err = Train(context.Background(), "x", TrainOptions{Order: MaxOrder + 1})
	assert.Error(t, err)
	_, err = Train(context.Background(), "x", TrainOptions{Tokenizer: "nope"})
	assert.Error(t, err)
}

func TestBackendGreedyFollowsCorpus(t *testing.T) {
	t.Parallel()

	b, err := FromModel(trained(t, 2), 64)
	require.NoError(t, err)

	ids, err := b.Tokenize("", true)
	require.NoError(t, err)
	require.Equal(t, []int{tokenizer.ByteBOS}, ids)
	require.NoError(t, b.Evaluate(ids))

	var out []int
	for i := 0; i < 5; i++ {
		next := logits.Argmax(b.Logits())
		if next == b.EOS() {
			break
		}
		out = append(out, next)
		require.NoError(t, b.Evaluate([]int{next}))
	}
	text, err := b.Detokenize(out)
	require.NoError(t, err)
	assert.Equal(t, "ab", text)
}

func TestBackendContextSize(t *testing.T) {
	t.Parallel()

	b, err := FromModel(trained(t, 1), 3)
	require.NoError(t, err)

	require.NoError(t, b.Evaluate([]int{'a', 'b'}))
	err = b.Evaluate([]int{'a', 'b'})
	require.ErrorIs(t, err, backend.ErrContextFull)
	require.NoError(t, b.Evaluate([]int{'a'}))

	b.Reset()
	require.NoError(t, b.Evaluate([]int{'a', 'b', 'a'}))
}

func TestBackendRejectsOutOfRangeTokens(t *testing.T) {
	t.Parallel()

	b, err := FromModel(trained(t, 1), 0)
	require.NoError(t, err)
	require.ErrorIs(t, b.Evaluate([]int{b.VocabSize()}), backend.ErrTokenRange)
	require.NoError(t, b.Evaluate(nil))
}

func TestBackendLogitsAreCopies(t *testing.T) {
	t.Parallel()

	b, err := FromModel(trained(t, 1), 0)
	require.NoError(t, err)
	first := b.Logits()
	require.Len(t, first, tokenizer.NewByte().VocabSize())
	first[0] = 1e9
	assert.NotEqual(t, float32(1e9), b.Logits()[0])
}

func TestBackendNotLoaded(t *testing.T) {
	t.Parallel()

	b := New()
	require.ErrorIs(t, b.Evaluate([]int{1}), backend.ErrNotLoaded)
	_, err := b.Tokenize("x", false)
	require.ErrorIs(t, err, backend.ErrNotLoaded)
	assert.Equal(t, -1, b.EOS())
	assert.Error(t, b.Load("", backend.Params{}))
}

func TestSaveAndLoadPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	modelPath := filepath.Join(dir, "models", "ab.json")
	require.NoError(t, trained(t, 1).Save(modelPath))

	b := New()
	require.NoError(t, b.Load(modelPath, backend.Params{ContextSize: 16}))
	assert.Equal(t, 3, b.Model().Order)
	assert.Equal(t, tokenizer.ByteEOS, b.EOS())

	corpusPath := filepath.Join(dir, "corpus.txt")
	require.NoError(t, os.WriteFile(corpusPath, []byte(corpus), 0o644))
	c := New()
	require.NoError(t, c.Load(corpusPath, backend.Params{Threads: 2}))
	assert.Equal(t, b.Model().Tables, c.Model().Tables)

	err := New().Load(modelPath, backend.Params{Tokenizer: "tiktoken:cl100k_base"})
	assert.Error(t, err, "tokenizer mismatch must fail")
}

func TestReadModelValidates(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"order":9,"vocab":258,"eos":257,"tables":[]}`), 0o644))
	_, err := ReadModel(path)
	assert.Error(t, err)
}

func TestRegistered(t *testing.T) {
	t.Parallel()

	b, err := backend.New("ngram")
	require.NoError(t, err)
	assert.Equal(t, backend.NGram, b.Name())
}
