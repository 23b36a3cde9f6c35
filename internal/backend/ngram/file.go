package ngram

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// Save writes m as JSON to path.
func (m *Model) Save(path string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(f)
	if err := json.NewEncoder(w).Encode(m); err != nil {
		return fmt.Errorf("ngram: encode %s: %w", path, err)
	}
	return w.Flush()
}

// ReadModel reads a JSON model written by Save.
func ReadModel(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var m Model
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&m); err != nil {
		return nil, fmt.Errorf("ngram: decode %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.prepare()
	return &m, nil
}

// LoadPath returns a model for path: a .json file is read as a saved model,
// anything else is treated as a UTF-8 corpus and trained with opts.
func LoadPath(ctx context.Context, path string, opts TrainOptions) (*Model, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ReadModel(path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Train(ctx, string(raw), opts)
}
