package inference

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samcharles93/tokchat/internal/backend"
)

// LoadBackend creates the named backend and loads path into it. Every
// failure, including a panic inside Load, matches ErrBackendLoad.
func LoadBackend(name, path string, params backend.Params) (backend.Backend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: model path is required", ErrBackendLoad)
	}
	b, err := backend.New(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendLoad, err)
	}
	if err := guard("Load", func() error { return b.Load(path, params) }); err != nil {
		return nil, errors.Join(fmt.Errorf("%w: %s %s: %w", ErrBackendLoad, b.Name(), path, err), safeClose(b))
	}
	if b.VocabSize() <= 0 || b.EOS() < 0 || b.EOS() >= b.VocabSize() {
		return nil, errors.Join(fmt.Errorf("%w: %s reported vocab %d and eos %d", ErrBackendLoad, b.Name(), b.VocabSize(), b.EOS()), safeClose(b))
	}
	return b, nil
}

func safeClose(b backend.Backend) error {
	return guard("Close", b.Close)
}
