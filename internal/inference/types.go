// Package inference drives a backend through a chat turn: prompt ingestion
// in chunks, then token-by-token decoding with sampling, streaming and a
// conversation-scoped recent-token window.
package inference

import (
	"time"

	"github.com/samcharles93/tokchat/internal/tplparser"
)

// StreamFunc receives each decoded token piece as soon as it is produced.
type StreamFunc func(piece string)

// Formatter turns the conversation history into a single prompt string.
type Formatter interface {
	Format(msgs []tplparser.Message) (string, error)
}

// State is the phase of one generation turn.
type State int

const (
	StateIdle State = iota
	StatePromptIngestion
	StateDecoding
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePromptIngestion:
		return "prompt-ingestion"
	case StateDecoding:
		return "decoding"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Result describes a finished or aborted turn. Text and Tokens hold
// whatever was generated before the turn ended.
type Result struct {
	Text   string
	Tokens []int
	State  State
	// HitEOS is set when decoding stopped on the end-of-sequence token
	// rather than the token budget.
	HitEOS bool
	// HitStop is set when a stop sequence ended the turn.
	HitStop bool
	Stats  Stats
}

type Stats struct {
	PromptTokens    int
	TokensGenerated int
	PromptDuration  time.Duration
	Duration        time.Duration
	TPS             float64
	// Fallbacks counts sampling steps that fell back to arg-max because the
	// filtered distribution had no usable mass.
	Fallbacks int
}
