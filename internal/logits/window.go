package logits

// DefaultWindowSize is the number of recent tokens considered for penalties.
const DefaultWindowSize = 2048

// Window is a fixed-capacity FIFO of recently processed tokens backed by a
// ring buffer. Pushing into a full window evicts the oldest token.
type Window struct {
	buf  []int
	head int // index of the oldest token
	n    int
}

// NewWindow returns an empty window holding at most capacity tokens. A
// non-positive capacity selects DefaultWindowSize.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	return &Window{buf: make([]int, capacity)}
}

// Push appends tok, evicting the oldest token when the window is full.
func (w *Window) Push(tok int) {
	if w.n < len(w.buf) {
		w.buf[(w.head+w.n)%len(w.buf)] = tok
		w.n++
		return
	}
	w.buf[w.head] = tok
	w.head = (w.head + 1) % len(w.buf)
}

// PushAll pushes every token of toks in order.
func (w *Window) PushAll(toks []int) {
	for _, t := range toks {
		w.Push(t)
	}
}

func (w *Window) Len() int { return w.n }

func (w *Window) Cap() int { return len(w.buf) }

// Reset empties the window without releasing its storage.
func (w *Window) Reset() {
	w.head = 0
	w.n = 0
}

// AppendTo appends the window contents, oldest first, to dst.
func (w *Window) AppendTo(dst []int) []int {
	end := w.head + w.n
	if end <= len(w.buf) {
		return append(dst, w.buf[w.head:end]...)
	}
	dst = append(dst, w.buf[w.head:]...)
	return append(dst, w.buf[:end-len(w.buf)]...)
}

// Contents returns a copy of the window, oldest first.
func (w *Window) Contents() []int {
	return w.AppendTo(make([]int, 0, w.n))
}
