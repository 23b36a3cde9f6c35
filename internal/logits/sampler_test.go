package logits

import (
	"math"
	"math/rand"
	"testing"
)

// TestSamplerDeterminism ensures that two samplers configured identically
// produce identical sequences when sampling the same logits vector.
func TestSamplerDeterminism(t *testing.T) {
	t.Parallel()

	logs := []float32{0, 1, 2, 3, 4, 5}
	cfg := SamplerConfig{Seed: 42, Temperature: 0.9, TopK: 4, TopP: 0.95, Penalties: Penalties{Repeat: 1}}
	s1 := NewSampler(cfg)
	s2 := NewSampler(cfg)
	for i := 0; i < 20; i++ {
		a := s1.Sample(logs, []int{5, 4})
		b := s2.Sample(logs, []int{5, 4})
		if a != b {
			t.Fatalf("draw %d: expected deterministic sample, got %d vs %d", i, a, b)
		}
	}
}

// TestSamplerGreedy checks that a zero temperature returns the arg-max for
// every seed and every call.
func TestSamplerGreedy(t *testing.T) {
	t.Parallel()

	logs := []float32{5, 1, 1}
	for _, seed := range []int64{1, 2, 99, -1} {
		s := NewSampler(SamplerConfig{Seed: seed, Temperature: 0, TopK: 40, TopP: 0.9})
		if !s.Greedy() {
			t.Fatalf("seed %d: expected greedy sampler", seed)
		}
		for i := 0; i < 5; i++ {
			if got := s.Sample(logs, nil); got != 0 {
				t.Fatalf("seed %d call %d: expected token 0, got %d", seed, i, got)
			}
		}
	}
}

func TestSamplerGreedyTiePrefersLowestIndex(t *testing.T) {
	t.Parallel()

	s := NewSampler(SamplerConfig{Temperature: 0})
	if got := s.Sample([]float32{3, 7, 7, 1}, nil); got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}
}

// TestSamplerTopP ensures that a dominant logit is the only survivor of the
// nucleus filter, so it is always returned.
func TestSamplerTopP(t *testing.T) {
	t.Parallel()

	logs := []float32{10, 0, 0, 0, 0}
	s := NewSampler(SamplerConfig{Seed: 7, Temperature: 1.0, TopK: 5, TopP: 0.5})
	for i := 0; i < 10; i++ {
		idx := s.Sample(logs, nil)
		if idx != 0 {
			t.Fatalf("top-p sampling returned unexpected index %d", idx)
		}
	}
}

func TestSamplerRepeatPenaltyChangesGreedyChoice(t *testing.T) {
	t.Parallel()

	logs := []float32{2.0, 1.8}
	s := NewSampler(SamplerConfig{Temperature: 0, Penalties: Penalties{Repeat: 1.2}})
	if got := s.Sample(logs, nil); got != 0 {
		t.Fatalf("without history expected 0, got %d", got)
	}
	if got := s.Sample(logs, []int{0}); got != 1 {
		t.Fatalf("with token 0 penalized expected 1, got %d", got)
	}
	if logs[0] != 2.0 {
		t.Fatalf("input logits were modified: %v", logs)
	}
}

func TestSamplerDegenerateFallsBackToArgmax(t *testing.T) {
	t.Parallel()

	s := NewSampler(SamplerConfig{Seed: 3, Temperature: 1})
	logs := []float32{0, float32(math.Inf(1)), 1}
	if got := s.Sample(logs, nil); got != 1 {
		t.Fatalf("expected arg-max fallback 1, got %d", got)
	}
	if s.Fallbacks() != 1 {
		t.Fatalf("expected one fallback, got %d", s.Fallbacks())
	}
}

func TestSamplerInjectedRand(t *testing.T) {
	t.Parallel()

	logs := []float32{1, 1, 1, 1}
	s1 := NewSampler(SamplerConfig{Temperature: 1, Rand: rand.New(rand.NewSource(11))})
	s2 := NewSampler(SamplerConfig{Temperature: 1, Rand: rand.New(rand.NewSource(11))})
	seen := map[int]bool{}
	for i := 0; i < 50; i++ {
		a, b := s1.Sample(logs, nil), s2.Sample(logs, nil)
		if a != b {
			t.Fatalf("draw %d differs: %d vs %d", i, a, b)
		}
		seen[a] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected a uniform distribution to yield several tokens, got %v", seen)
	}
}

func TestSamplerRandomSeed(t *testing.T) {
	t.Parallel()

	s := NewSampler(SamplerConfig{Seed: -1, Temperature: 1})
	if s.Seed() < 0 {
		t.Fatalf("expected a derived non-negative seed, got %d", s.Seed())
	}
	if other := NewSampler(SamplerConfig{Seed: -1, Temperature: 1}); other.Seed() == s.Seed() {
		t.Fatalf("two entropy seeds collided: %d", s.Seed())
	}
	s = NewSampler(SamplerConfig{Seed: 0, Temperature: 1})
	if s.Seed() != 0 {
		t.Fatalf("expected explicit seed 0 to be kept, got %d", s.Seed())
	}
	s = NewSampler(SamplerConfig{Seed: 5, Temperature: 1})
	if s.Seed() != 5 {
		t.Fatalf("expected seed 5, got %d", s.Seed())
	}
}

func TestDraw(t *testing.T) {
	t.Parallel()

	cands := []Candidate{{Token: 3, Prob: 0.5}, {Token: 1, Prob: 0.3}, {Token: 2, Prob: 0.2}}
	cases := []struct {
		r    float64
		want int
	}{
		{0, 3},
		{0.25, 3},
		{0.5, 3},
		{0.51, 1},
		{0.7, 1},
		{0.9, 2},
		{0.999, 2},
	}
	for _, tc := range cases {
		if got := Draw(cands, tc.r); got != tc.want {
			t.Errorf("Draw(r=%v) = %d, want %d", tc.r, got, tc.want)
		}
	}

	short := []Candidate{{Token: 4, Prob: 0.4}, {Token: 6, Prob: 0.4}}
	if got := Draw(short, 0.95); got != 6 {
		t.Fatalf("expected last candidate when mass is short, got %d", got)
	}
	if got := Draw(nil, 0.1); got != -1 {
		t.Fatalf("expected -1 for empty candidates, got %d", got)
	}
}

func TestArgmaxEmptyPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	Argmax(nil)
}

func TestSamplerInjectedRandReportsNoSeed(t *testing.T) {
	t.Parallel()

	s := NewSampler(SamplerConfig{Seed: 9, Temperature: 1, Rand: rand.New(rand.NewSource(9))})
	if s.Seed() != SeedInjected {
		t.Fatalf("expected SeedInjected for a supplied source, got %d", s.Seed())
	}
}
