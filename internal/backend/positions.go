package backend

import "fmt"

// Positions tracks how many context slots a backend has consumed since the
// last reset. Backends embed it to enforce their context size.
type Positions struct {
	Size int
	pos  int
}

// Pos returns the next free position.
func (p *Positions) Pos() int { return p.pos }

// Reserve claims n consecutive positions, failing without side effects when
// they would not fit. A non-positive Size means unbounded.
func (p *Positions) Reserve(n int) error {
	if p.Size > 0 && p.pos+n > p.Size {
		return fmt.Errorf("%w: %d positions used, %d requested, size %d", ErrContextFull, p.pos, n, p.Size)
	}
	p.pos += n
	return nil
}

// Rewind resets the position counter to zero.
func (p *Positions) Rewind() { p.pos = 0 }

// CheckTokens reports the first token outside [0, vocab).
func CheckTokens(tokens []int, vocab int) error {
	for _, t := range tokens {
		if t < 0 || t >= vocab {
			return fmt.Errorf("%w: %d (vocab %d)", ErrTokenRange, t, vocab)
		}
	}
	return nil
}
