package inference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/tokchat/internal/backend"
	_ "github.com/samcharles93/tokchat/internal/backend/ngram"
)

func TestLoadBackend(t *testing.T) {
	t.Parallel()

	corpus := filepath.Join(t.TempDir(), "corpus.txt")
	require.NoError(t, os.WriteFile(corpus, []byte("hello there\n\ngeneral kenobi\n"), 0o644))

	b, err := LoadBackend("", corpus, backend.Params{ContextSize: 128})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	assert.Equal(t, backend.NGram, b.Name())
	assert.Equal(t, 258, b.VocabSize())
}

func TestLoadBackendFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		backend string
		path    string
	}{
		{"empty path", "", " "},
		{"unknown backend", "llama", "model.gguf"},
		{"missing file", "ngram", filepath.Join(t.TempDir(), "nope.txt")},
	}
	for _, tc := range tests {
		_, err := LoadBackend(tc.backend, tc.path, backend.Params{})
		assert.ErrorIs(t, err, ErrBackendLoad, tc.name)
	}

	_, err := LoadBackend("llama", "model.gguf", backend.Params{})
	assert.ErrorIs(t, err, backend.ErrUnknownEngine)
}
