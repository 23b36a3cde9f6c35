package inference

import "strings"

// stopFilter sits between the decoder and the stream. It holds back any
// suffix that could still grow into a stop sequence and reports when one
// completes; the sequence itself is never emitted.
type stopFilter struct {
	stops []string
	held  string
}

func newStopFilter(stops []string) *stopFilter {
	f := &stopFilter{}
	for _, s := range stops {
		if s != "" {
			f.stops = append(f.stops, s)
		}
	}
	return f
}

// Push adds a decoded piece and returns the text that is safe to emit.
func (f *stopFilter) Push(piece string) (emit string, stopped bool) {
	if len(f.stops) == 0 {
		return piece, false
	}
	buf := f.held + piece
	if i := f.firstMatch(buf); i >= 0 {
		f.held = ""
		return buf[:i], true
	}
	keep := f.partialSuffix(buf)
	f.held = buf[len(buf)-keep:]
	return buf[:len(buf)-keep], false
}

// Flush releases text held back at the end of a turn.
func (f *stopFilter) Flush() string {
	h := f.held
	f.held = ""
	return h
}

func (f *stopFilter) firstMatch(buf string) int {
	first := -1
	for _, s := range f.stops {
		if i := strings.Index(buf, s); i >= 0 && (first < 0 || i < first) {
			first = i
		}
	}
	return first
}

// partialSuffix returns the length of the longest suffix of buf that is a
// proper prefix of a stop sequence.
func (f *stopFilter) partialSuffix(buf string) int {
	best := 0
	for _, s := range f.stops {
		for k := min(len(s)-1, len(buf)); k > best; k-- {
			if strings.HasSuffix(buf, s[:k]) {
				best = k
				break
			}
		}
	}
	return best
}
