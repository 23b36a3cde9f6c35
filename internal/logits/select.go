package logits

import (
	"cmp"
	"math"
	"slices"
)

// Candidate is one entry of the truncated next-token distribution.
type Candidate struct {
	Token int
	Prob  float64
}

// SelectCandidates turns adjusted logits into a renormalized candidate list
// ordered by descending probability.
//
// The weights are exp((l - max) / temperature). When topK > 0 and the
// vocabulary is larger than topK only the topK heaviest tokens survive. When
// topP < 1 the shortest prefix whose share of the retained mass reaches topP
// is kept, never less than one candidate. Ties are ordered toward the lower
// token id.
//
// ok is false when no distribution can be built: temperature <= 0, empty
// logits, or a retained mass that is not a positive finite number. Callers
// fall back to Argmax in that case.
func SelectCandidates(logits []float32, temperature float32, topK int, topP float32) (cands []Candidate, ok bool) {
	var s selector
	return s.selectCandidates(logits, temperature, topK, topP)
}

// selector holds scratch buffers reused across sampling steps.
type selector struct {
	idx   []int
	val   []float32
	w     []float64
	cands []Candidate
}

func (s *selector) selectCandidates(logits []float32, temperature float32, topK int, topP float32) ([]Candidate, bool) {
	if temperature <= 0 || len(logits) == 0 {
		return nil, false
	}
	maxv := float32(math.Inf(-1))
	for _, l := range logits {
		if l > maxv {
			maxv = l
		}
	}
	if math.IsInf(float64(maxv), 0) {
		return nil, false
	}
	invTemp := 1 / float64(temperature)

	var idx []int
	if topK > 0 && topK < len(logits) {
		idx = s.topK(logits, topK)
	} else {
		idx = s.all(len(logits))
	}

	if cap(s.w) < len(idx) {
		s.w = make([]float64, len(idx))
	}
	w := s.w[:len(idx)]
	var total float64
	for i, id := range idx {
		l := logits[id]
		if l != l {
			w[i] = 0
			continue
		}
		w[i] = math.Exp(float64(l-maxv) * invTemp)
		total += w[i]
	}

	cands := s.cands[:0]
	for i, id := range idx {
		cands = append(cands, Candidate{Token: id, Prob: w[i]})
	}
	s.cands = cands
	// topK output is already ordered; the full path needs a sort. Stable so
	// equal weights keep ascending token order.
	slices.SortStableFunc(cands, func(a, b Candidate) int {
		return cmp.Compare(b.Prob, a.Prob)
	})

	if !(total > 0) || math.IsInf(total, 0) {
		return nil, false
	}

	cut := len(cands)
	if topP < 1 {
		threshold := float64(topP)
		var cum float64
		for i := range cands {
			cum += cands[i].Prob
			if cum/total >= threshold {
				cut = i + 1
				break
			}
		}
	}
	cands = cands[:cut]

	var sum float64
	for _, c := range cands {
		sum += c.Prob
	}
	if !(sum > 0) || math.IsInf(sum, 0) {
		return nil, false
	}
	inv := 1 / sum
	for i := range cands {
		cands[i].Prob *= inv
	}
	return cands, true
}

func (s *selector) all(n int) []int {
	if cap(s.idx) < n {
		s.idx = make([]int, n)
	}
	idx := s.idx[:n]
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// topK returns the ids of the k largest logits, largest first, using a
// bounded insertion pass over the vocabulary. NaN logits are never selected.
func (s *selector) topK(logits []float32, k int) []int {
	if cap(s.idx) < k+1 {
		s.idx = make([]int, 0, k+1)
		s.val = make([]float32, 0, k+1)
	}
	topIdx := s.idx[:0]
	topVal := s.val[:0]

	for i, v := range logits {
		if v != v {
			continue
		}
		pos := len(topVal)
		for pos > 0 && topVal[pos-1] < v {
			pos--
		}
		if pos >= k {
			continue
		}

		topIdx = append(topIdx, 0)
		topVal = append(topVal, 0)
		copy(topIdx[pos+1:], topIdx[pos:])
		copy(topVal[pos+1:], topVal[pos:])
		topIdx[pos] = i
		topVal[pos] = v

		if len(topVal) > k {
			topIdx = topIdx[:k]
			topVal = topVal[:k]
		}
	}
	s.idx = topIdx
	s.val = topVal
	return topIdx
}
