package inference

import (
	"math"

	"github.com/samcharles93/tokchat/internal/logits"
)

// Params are the sampling settings for a turn.
type Params struct {
	Temperature      float32
	TopK             int
	TopP             float32
	RepeatPenalty    float32
	FrequencyPenalty float32
	PresencePenalty  float32
	MaxNewTokens     int
}

// DefaultParams returns the settings used when nothing is configured.
func DefaultParams() Params {
	return Params{
		Temperature:   0.7,
		TopK:          40,
		TopP:          0.95,
		RepeatPenalty: 1.1,
		MaxNewTokens:  512,
	}
}

// Validate reports the first out-of-range field as an ErrInvalidParams.
func (p Params) Validate() error {
	finite := func(v float32) bool {
		return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
	}
	switch {
	case !finite(p.Temperature) || p.Temperature < 0:
		return &invalidParamsError{"temperature", "must be a finite value >= 0"}
	case p.TopK < 0:
		return &invalidParamsError{"top-k", "must be >= 0"}
	case !finite(p.TopP) || p.TopP <= 0 || p.TopP > 1:
		return &invalidParamsError{"top-p", "must be in (0, 1]"}
	case !finite(p.RepeatPenalty) || p.RepeatPenalty < 1:
		return &invalidParamsError{"repeat-penalty", "must be >= 1"}
	case !finite(p.FrequencyPenalty):
		return &invalidParamsError{"frequency-penalty", "must be finite"}
	case !finite(p.PresencePenalty):
		return &invalidParamsError{"presence-penalty", "must be finite"}
	case p.MaxNewTokens < 0:
		return &invalidParamsError{"max-new-tokens", "must be >= 0"}
	}
	return nil
}

// Penalties returns the penalty part of p.
func (p Params) Penalties() logits.Penalties {
	return logits.Penalties{
		Repeat:    p.RepeatPenalty,
		Frequency: p.FrequencyPenalty,
		Presence:  p.PresencePenalty,
	}
}

// ParamOptions carries optional overrides. Nil fields keep the default.
type ParamOptions struct {
	Temperature      *float32
	TopK             *int
	TopP             *float32
	RepeatPenalty    *float32
	FrequencyPenalty *float32
	PresencePenalty  *float32
	MaxNewTokens     *int
}

// ResolveParams overlays opts onto defaults. The result is not validated.
func ResolveParams(opts ParamOptions, defaults Params) Params {
	p := defaults
	if opts.Temperature != nil {
		p.Temperature = *opts.Temperature
	}
	if opts.TopK != nil {
		p.TopK = *opts.TopK
	}
	if opts.TopP != nil {
		p.TopP = *opts.TopP
	}
	if opts.RepeatPenalty != nil {
		p.RepeatPenalty = *opts.RepeatPenalty
	}
	if opts.FrequencyPenalty != nil {
		p.FrequencyPenalty = *opts.FrequencyPenalty
	}
	if opts.PresencePenalty != nil {
		p.PresencePenalty = *opts.PresencePenalty
	}
	if opts.MaxNewTokens != nil {
		p.MaxNewTokens = *opts.MaxNewTokens
	}
	return p
}
