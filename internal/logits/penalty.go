package logits

// Penalties configures the repetition-aware adjustments applied to logits
// before candidate selection.
type Penalties struct {
	// Repeat divides positive logits and multiplies non-positive ones for
	// every token present in the recent window. 1 disables it.
	Repeat float32
	// Frequency is subtracted once per occurrence of a token in the window.
	Frequency float32
	// Presence is subtracted once for any token present in the window.
	Presence float32
}

// Enabled reports whether applying p can change any logit.
func (p Penalties) Enabled() bool {
	return p.Repeat != 1 || p.Frequency != 0 || p.Presence != 0
}

// ApplyPenalties returns a copy of logits adjusted for the tokens in recent.
// Token ids outside the vocabulary are ignored. The input slice is never
// modified.
func ApplyPenalties(logits []float32, recent []int, p Penalties) []float32 {
	out := make([]float32, len(logits))
	copy(out, logits)
	if len(recent) == 0 || !p.Enabled() {
		return out
	}

	counts := make(map[int]int, min(len(recent), len(logits)))
	for _, id := range recent {
		if id >= 0 && id < len(out) {
			counts[id]++
		}
	}
	for id, n := range counts {
		out[id] = penalize(out[id], n, p)
	}
	return out
}

func penalize(v float32, count int, p Penalties) float32 {
	if p.Repeat != 1 {
		// Both branches move v away from selection regardless of its sign.
		if v > 0 {
			v /= p.Repeat
		} else {
			v *= p.Repeat
		}
	}
	v -= p.Frequency * float32(count)
	v -= p.Presence
	return v
}
