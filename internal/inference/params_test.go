package inference

import (
	"errors"
	"math"
	"testing"
)

func TestParamsValidate(t *testing.T) {
	t.Parallel()

	nan := float32(math.NaN())
	tests := []struct {
		name string
		mut  func(*Params)
		ok   bool
	}{
		{"defaults", func(*Params) {}, true},
		{"greedy", func(p *Params) { p.Temperature = 0 }, true},
		{"top-k disabled", func(p *Params) { p.TopK = 0 }, true},
		{"negative penalties allowed", func(p *Params) { p.FrequencyPenalty = -1; p.PresencePenalty = -0.5 }, true},
		{"negative temperature", func(p *Params) { p.Temperature = -0.1 }, false},
		{"nan temperature", func(p *Params) { p.Temperature = nan }, false},
		{"negative top-k", func(p *Params) { p.TopK = -1 }, false},
		{"zero top-p", func(p *Params) { p.TopP = 0 }, false},
		{"top-p above one", func(p *Params) { p.TopP = 1.01 }, false},
		{"repeat below one", func(p *Params) { p.RepeatPenalty = 0.9 }, false},
		{"infinite presence", func(p *Params) { p.PresencePenalty = float32(math.Inf(1)) }, false},
		{"negative budget", func(p *Params) { p.MaxNewTokens = -1 }, false},
	}
	for _, tc := range tests {
		p := DefaultParams()
		tc.mut(&p)
		err := p.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidParams) {
			t.Errorf("%s: expected ErrInvalidParams, got %v", tc.name, err)
		}
	}
}

func TestResolveParams(t *testing.T) {
	t.Parallel()

	temp := float32(0)
	topK := 5
	maxNew := 7
	got := ResolveParams(ParamOptions{Temperature: &temp, TopK: &topK, MaxNewTokens: &maxNew}, DefaultParams())

	want := DefaultParams()
	want.Temperature = 0
	want.TopK = 5
	want.MaxNewTokens = 7
	if got != want {
		t.Fatalf("ResolveParams = %+v, want %+v", got, want)
	}
	if got := ResolveParams(ParamOptions{}, DefaultParams()); got != DefaultParams() {
		t.Fatalf("empty options changed defaults: %+v", got)
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	for s, want := range map[State]string{
		StateIdle:            "idle",
		StatePromptIngestion: "prompt-ingestion",
		StateDecoding:        "decoding",
		StateCompleted:       "completed",
		StateAborted:         "aborted",
		State(99):            "unknown",
	} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
