package inference

import (
	"context"
	"strings"
	"time"

	"github.com/samcharles93/tokchat/internal/backend"
	"github.com/samcharles93/tokchat/internal/logger"
	"github.com/samcharles93/tokchat/internal/logits"
)

// DefaultChunkSize bounds how many prompt tokens go to the backend in one
// Evaluate call.
const DefaultChunkSize = 512

// Generator runs one turn against a backend that has already been reset.
// Window is shared across turns and is updated in place.
type Generator struct {
	Backend   backend.Backend
	Sampler   *logits.Sampler
	Window    *logits.Window
	ChunkSize int
	// Stop lists strings that end the turn once generated. They are cut
	// from the reply.
	Stop []string
	Log  logger.Logger

	recent []int
}

// Run ingests prompt and then decodes up to maxNew tokens, streaming each
// piece. The returned Result is never nil; on error it holds the text
// produced so far and State is StateAborted.
func (g *Generator) Run(ctx context.Context, prompt []int, maxNew int, stream StreamFunc) (*Result, error) {
	log := g.Log
	if log == nil {
		log = logger.Discard()
	}
	res := &Result{State: StateIdle}
	res.Stats.PromptTokens = len(prompt)
	fallbacks := g.Sampler.Fallbacks()
	start := time.Now()

	var sb strings.Builder
	stop := newStopFilter(g.Stop)
	finish := func(state State) {
		if rest := stop.Flush(); rest != "" && !res.HitStop {
			sb.WriteString(rest)
			if stream != nil {
				stream(rest)
			}
		}
		res.State = state
		res.Text = sb.String()
		res.Stats.TokensGenerated = len(res.Tokens)
		res.Stats.Duration = time.Since(start)
		if decode := res.Stats.Duration - res.Stats.PromptDuration; decode > 0 {
			res.Stats.TPS = float64(res.Stats.TokensGenerated) / decode.Seconds()
		}
		res.Stats.Fallbacks = g.Sampler.Fallbacks() - fallbacks
	}

	res.State = StatePromptIngestion
	chunk := g.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	for i, off := 0, 0; off < len(prompt); i, off = i+1, off+chunk {
		span := prompt[off:min(off+chunk, len(prompt))]
		g.Window.PushAll(span)
		if err := guard("Evaluate", func() error { return g.Backend.Evaluate(span) }); err != nil {
			finish(StateAborted)
			return res, &StepError{Phase: StatePromptIngestion, Step: i, Err: err}
		}
		log.Debug("prompt chunk evaluated", "chunk", i, "tokens", len(span))
	}
	res.Stats.PromptDuration = time.Since(start)

	res.State = StateDecoding
	eos := g.Backend.EOS()
	for step := 0; step < maxNew; step++ {
		if err := ctx.Err(); err != nil {
			finish(StateAborted)
			return res, err
		}

		var next int
		err := guard("Sample", func() error {
			g.recent = g.Window.AppendTo(g.recent[:0])
			next = g.Sampler.Sample(g.Backend.Logits(), g.recent)
			return nil
		})
		if err != nil {
			finish(StateAborted)
			return res, &StepError{Phase: StateDecoding, Step: step, Err: err}
		}
		if next == eos {
			res.HitEOS = true
			break
		}

		var piece string
		err = guard("Detokenize", func() error {
			var derr error
			piece, derr = g.Backend.Detokenize([]int{next})
			return derr
		})
		if err != nil {
			finish(StateAborted)
			return res, &StepError{Phase: StateDecoding, Step: step, Err: err}
		}
		res.Tokens = append(res.Tokens, next)
		emit, stopped := stop.Push(piece)
		sb.WriteString(emit)
		if stream != nil && emit != "" {
			stream(emit)
		}
		if stopped {
			res.HitStop = true
			break
		}

		g.Window.Push(next)
		if err := guard("Evaluate", func() error { return g.Backend.Evaluate([]int{next}) }); err != nil {
			finish(StateAborted)
			return res, &StepError{Phase: StateDecoding, Step: step, Err: err}
		}
	}

	finish(StateCompleted)
	if res.Stats.Fallbacks > 0 {
		log.Debug("degenerate distribution, used arg-max", "count", res.Stats.Fallbacks)
	}
	return res, nil
}
