package inference

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/samcharles93/tokchat/internal/backend"
	"github.com/samcharles93/tokchat/internal/logger"
	"github.com/samcharles93/tokchat/internal/logits"
	"github.com/samcharles93/tokchat/internal/tplparser"
)

// DefaultSystemPrompt opens every conversation unless overridden.
const DefaultSystemPrompt = "You are a helpful assistant."

// SessionConfig configures a chat session.
type SessionConfig struct {
	Params Params
	// Seed seeds the sampler once for the whole session. Nil or negative
	// seeds it from the operating system's entropy source.
	Seed *int64
	// Rand, when set, replaces the seeded random source.
	Rand *rand.Rand
	// SystemPrompt is the first history message; empty means none.
	SystemPrompt string
	WindowSize   int
	ChunkSize    int
	Formatter    Formatter
	// Stop overrides the formatter's stop sequences when non-nil.
	Stop []string
	Log  logger.Logger
}

// Session holds one conversation: history, the recent-token window and the
// sampler. It is not safe for concurrent use.
type Session struct {
	id      string
	backend backend.Backend
	cfg     SessionConfig
	gen     *Generator
	history []tplparser.Message
	turns   int
	log     logger.Logger
}

// NewSession validates cfg and starts a conversation on a loaded backend.
func NewSession(b backend.Backend, cfg SessionConfig) (*Session, error) {
	if b == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	if cfg.Formatter == nil {
		t, err := tplparser.Lookup(tplparser.DefaultTemplate)
		if err != nil {
			return nil, err
		}
		cfg.Formatter = t
	}
	stop := cfg.Stop
	if stop == nil {
		if ss, ok := cfg.Formatter.(interface{ StopSequences() []string }); ok {
			stop = ss.StopSequences()
		}
	}
	id := uuid.NewString()
	log := cfg.Log
	if log == nil {
		log = logger.Discard()
	}
	log = log.With("session", id)

	seed := int64(-1)
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}
	sampler := logits.NewSampler(logits.SamplerConfig{
		Seed:        seed,
		Temperature: cfg.Params.Temperature,
		TopK:        cfg.Params.TopK,
		TopP:        cfg.Params.TopP,
		Penalties:   cfg.Params.Penalties(),
		Rand:        cfg.Rand,
	})
	s := &Session{
		id:      id,
		backend: b,
		cfg:     cfg,
		gen: &Generator{
			Backend:   b,
			Sampler:   sampler,
			Window:    logits.NewWindow(cfg.WindowSize),
			ChunkSize: cfg.ChunkSize,
			Stop:      stop,
			Log:       log,
		},
		log: log,
	}
	s.resetHistory()
	log.Debug("session started", "backend", b.Name(), "seed", sampler.Seed(), "window", s.gen.Window.Cap())
	return s, nil
}

func (s *Session) ID() string { return s.id }

// Seed returns the seed the sampler was created with, or
// logits.SeedInjected when SessionConfig.Rand supplied the source.
func (s *Session) Seed() int64 { return s.gen.Sampler.Seed() }

// Turns returns how many turns have run since the session started or was
// last reset.
func (s *Session) Turns() int { return s.turns }

// Window returns the number of tokens in the recent-token window and its
// capacity.
func (s *Session) Window() (n, capacity int) {
	return s.gen.Window.Len(), s.gen.Window.Cap()
}

// History returns a copy of the conversation so far.
func (s *Session) History() []tplparser.Message {
	return append([]tplparser.Message(nil), s.history...)
}

// Reset drops everything but the system prompt and empties the window.
func (s *Session) Reset() {
	s.resetHistory()
	s.gen.Window.Reset()
	s.turns = 0
	s.log.Debug("session reset")
}

func (s *Session) resetHistory() {
	s.history = s.history[:0]
	if s.cfg.SystemPrompt != "" {
		s.history = append(s.history, tplparser.Message{Role: tplparser.RoleSystem, Content: s.cfg.SystemPrompt})
	}
}

// Turn runs one user turn. The user message always stays in history; the
// assistant reply is recorded when decoding was reached, including partial
// text from an aborted turn. The Result is nil only when the prompt could
// not be built.
func (s *Session) Turn(ctx context.Context, user string, stream StreamFunc) (*Result, error) {
	s.history = append(s.history, tplparser.Message{Role: tplparser.RoleUser, Content: user})
	s.turns++

	prompt, err := s.cfg.Formatter.Format(s.history)
	if err != nil {
		return nil, fmt.Errorf("%w: format prompt: %w", ErrPromptIngestion, err)
	}
	var ids []int
	err = guard("Tokenize", func() error {
		var terr error
		ids, terr = s.backend.Tokenize(prompt, true)
		return terr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: tokenize prompt: %w", ErrPromptIngestion, err)
	}
	if err := guard("Reset", func() error { s.backend.Reset(); return nil }); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPromptIngestion, err)
	}

	res, err := s.gen.Run(ctx, ids, s.cfg.Params.MaxNewTokens, stream)
	if err == nil || !errors.Is(err, ErrPromptIngestion) {
		s.history = append(s.history, tplparser.Message{Role: tplparser.RoleAssistant, Content: res.Text})
	}

	attrs := []any{
		"turn", s.turns,
		"state", res.State.String(),
		"prompt_tokens", res.Stats.PromptTokens,
		"generated", res.Stats.TokensGenerated,
		"tps", fmt.Sprintf("%.2f", res.Stats.TPS),
		"took", res.Stats.Duration,
	}
	if err != nil {
		s.log.Warn("turn aborted", append(attrs, "error", err)...)
		return res, err
	}
	s.log.Info("turn complete", attrs...)
	return res, nil
}
