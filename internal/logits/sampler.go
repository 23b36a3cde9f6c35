package logits

import (
	crand "crypto/rand"
	"encoding/binary"
	"math"
	"math/rand"
)

// SeedInjected is reported by Sampler.Seed when the random source was
// supplied through SamplerConfig.Rand.
const SeedInjected = -1

// SamplerConfig configures the behaviour of a Sampler.
type SamplerConfig struct {
	// Seed seeds the sampler's random source. A negative seed draws one
	// from the operating system's entropy source.
	Seed        int64
	Temperature float32
	TopK        int
	TopP        float32
	Penalties   Penalties

	// Rand replaces the seeded source when non-nil.
	Rand *rand.Rand
}

// Sampler picks the next token from a logits vector. It owns its random
// source and scratch buffers and is not safe for concurrent use.
type Sampler struct {
	rng       *rand.Rand
	seed      int64
	cfg       SamplerConfig
	greedy    bool
	sel       selector
	fallbacks int
}

// NewSampler returns a new sampler with the provided configuration.
func NewSampler(cfg SamplerConfig) *Sampler {
	if cfg.TopK < 0 {
		cfg.TopK = 0
	}
	if cfg.TopP <= 0 || cfg.TopP > 1 {
		cfg.TopP = 1
	}
	if cfg.Penalties.Repeat <= 0 {
		cfg.Penalties.Repeat = 1
	}

	var seed int64 = SeedInjected
	rng := cfg.Rand
	if rng == nil {
		seed = cfg.Seed
		if seed < 0 {
			seed = RandomSeed()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	return &Sampler{
		rng:    rng,
		seed:   seed,
		cfg:    cfg,
		greedy: cfg.Temperature <= 0,
	}
}

// Seed returns the seed the random source was created with, or
// SeedInjected when the caller supplied the source.
func (s *Sampler) Seed() int64 { return s.seed }

// RandomSeed returns a non-negative seed from crypto/rand.
func RandomSeed() int64 {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return int64(binary.LittleEndian.Uint64(b[:]) & math.MaxInt64)
}

// Greedy reports whether the sampler always returns the arg-max token.
func (s *Sampler) Greedy() bool { return s.greedy }

// Fallbacks returns how many draws fell back to arg-max because the
// candidate distribution was degenerate.
func (s *Sampler) Fallbacks() int { return s.fallbacks }

// Sample draws a single token id from logits. The steps are:
//
//  1. Apply repeat, frequency and presence penalties for the tokens in
//     recent, on a copy of logits.
//  2. With a zero temperature return the arg-max of the adjusted logits.
//  3. Otherwise build the temperature, top-k and top-p candidate list and
//     draw from it with one uniform value in [0,1).
//
// If the candidate mass is degenerate the arg-max is returned instead.
func (s *Sampler) Sample(logits []float32, recent []int) int {
	adjusted := ApplyPenalties(logits, recent, s.cfg.Penalties)
	if s.greedy {
		return Argmax(adjusted)
	}

	cands, ok := s.sel.selectCandidates(adjusted, s.cfg.Temperature, s.cfg.TopK, s.cfg.TopP)
	if !ok {
		s.fallbacks++
		return Argmax(adjusted)
	}
	return Draw(cands, s.rng.Float64())
}

// Draw walks cands in order and returns the first token whose cumulative
// probability reaches r. If rounding leaves r unreached the last candidate
// is returned. Draw returns -1 for an empty list.
func Draw(cands []Candidate, r float64) int {
	if len(cands) == 0 {
		return -1
	}
	var c float64
	for _, cand := range cands {
		c += cand.Prob
		if c >= r {
			return cand.Token
		}
	}
	return cands[len(cands)-1].Token
}

// Argmax returns the index of the maximum value in the slice, preferring the
// lowest index on ties. If the slice is empty it panics.
func Argmax(x []float32) int {
	if len(x) == 0 {
		panic("argmax: empty slice")
	}
	bestI := 0
	bestV := x[0]
	for i := 1; i < len(x); i++ {
		if x[i] > bestV {
			bestV = x[i]
			bestI = i
		}
	}
	return bestI
}
