// Package backend defines the contract between the generation loop and a
// concrete language-model engine, plus a name-based registry used to select
// an engine at startup.
package backend

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

const (
	NGram = "ngram"
	Toy   = "toy"

	// Default is used when no backend name is configured.
	Default = NGram
)

var (
	ErrNotLoaded     = errors.New("backend not loaded")
	ErrContextFull   = errors.New("context window is full")
	ErrTokenRange    = errors.New("token id out of range")
	ErrUnknownEngine = errors.New("unknown backend")
)

// Params are the load-time settings shared by every backend.
type Params struct {
	ContextSize int
	Threads     int
	// Seed seeds any randomness used while loading. Zero or negative means
	// the backend picks its own.
	Seed int64
	// Tokenizer selects the tokenizer for backends that support more than
	// one (for example "byte" or "tiktoken:cl100k_base").
	Tokenizer string
}

// Backend is an autoregressive model that turns token sequences into
// next-token logits. Implementations are used by a single goroutine.
type Backend interface {
	Name() string
	Load(path string, params Params) error

	// Tokenize encodes text, prefixing the BOS token when addBOS is set and
	// the model has one.
	Tokenize(text string, addBOS bool) ([]int, error)
	// Detokenize decodes tokens; a single token must be accepted.
	Detokenize(tokens []int) (string, error)

	// Reset clears per-turn evaluation state, rewinding the position counter.
	Reset()
	// Evaluate appends tokens at the next positions and refreshes the logits
	// of the last one.
	Evaluate(tokens []int) error
	// Logits returns a fresh copy of the logits for the last evaluated
	// position, VocabSize entries long.
	Logits() []float32

	VocabSize() int
	EOS() int
	// BOS returns -1 when the model has no beginning-of-sequence token.
	BOS() int

	Close() error
}

// Factory builds an unloaded backend.
type Factory func() Backend

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a backend available under name. It panics on duplicates.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	name = strings.ToLower(strings.TrimSpace(name))
	if _, dup := registry[name]; dup {
		panic("backend: Register called twice for " + name)
	}
	registry[name] = f
}

// Normalize canonicalises a configured backend name.
func Normalize(name string) (string, error) {
	b := strings.ToLower(strings.TrimSpace(name))
	if b == "" {
		return Default, nil
	}
	registryMu.RLock()
	_, ok := registry[b]
	registryMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w %q (expected one of %s)", ErrUnknownEngine, name, Available())
	}
	return b, nil
}

// New returns an unloaded backend registered under name.
func New(name string) (Backend, error) {
	b, err := Normalize(name)
	if err != nil {
		return nil, err
	}
	registryMu.RLock()
	f := registry[b]
	registryMu.RUnlock()
	return f(), nil
}

// Available returns a comma-separated list of registered backends.
func Available() string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	entries := make([]string, 0, len(registry))
	for name := range registry {
		entries = append(entries, name)
	}
	sort.Strings(entries)
	return strings.Join(entries, ",")
}
