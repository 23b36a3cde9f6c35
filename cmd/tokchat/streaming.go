package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

type StreamMode string

const (
	StreamInstant    StreamMode = "instant"
	StreamTypewriter StreamMode = "typewriter"
	StreamQuiet      StreamMode = "quiet"
)

func parseStreamMode(s string) (StreamMode, error) {
	switch m := StreamMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return StreamInstant, nil
	case StreamInstant, StreamTypewriter, StreamQuiet:
		return m, nil
	default:
		return "", fmt.Errorf("unknown stream mode %q (expected %s, %s or %s)", s, StreamInstant, StreamTypewriter, StreamQuiet)
	}
}

// StreamWriter prints token pieces as they arrive. It is driven from the
// generation loop's goroutine only.
type StreamWriter struct {
	mode StreamMode
	out  *bufio.Writer

	// rawOutput escapes control characters so the transcript shows exactly
	// what the model produced.
	rawOutput bool

	accumulator strings.Builder
	// pending holds the leading bytes of a rune split across tokens.
	pending []byte
}

func NewStreamWriter(w io.Writer, mode StreamMode, rawOutput bool) *StreamWriter {
	return &StreamWriter{
		mode:      mode,
		out:       bufio.NewWriterSize(w, 4096),
		rawOutput: rawOutput,
	}
}

// Write handles a single token piece.
func (w *StreamWriter) Write(piece string) {
	w.accumulator.WriteString(piece)
	switch w.mode {
	case StreamQuiet:
	case StreamTypewriter:
		w.writeTypewriter(piece)
	default:
		w.emit(piece)
		_ = w.out.Flush()
	}
}

// writeTypewriter writes complete runes one at a time, flushing after each,
// and holds back a trailing partial rune until its remaining bytes arrive.
func (w *StreamWriter) writeTypewriter(piece string) {
	w.pending = append(w.pending, piece...)
	for len(w.pending) > 0 && utf8.FullRune(w.pending) {
		_, size := utf8.DecodeRune(w.pending)
		w.emit(string(w.pending[:size]))
		_ = w.out.Flush()
		w.pending = w.pending[size:]
	}
}

func (w *StreamWriter) emit(s string) {
	if w.rawOutput {
		s = escapeRawOutput(s)
	}
	_, _ = w.out.WriteString(s)
}

// Flush writes anything still held back and returns the text of the turn.
// The writer is ready for the next turn afterwards.
func (w *StreamWriter) Flush() string {
	text := w.accumulator.String()
	switch w.mode {
	case StreamQuiet:
		w.emit(text)
	case StreamTypewriter:
		w.emit(string(w.pending))
	}
	_ = w.out.Flush()
	w.accumulator.Reset()
	w.pending = w.pending[:0]
	return text
}

func escapeRawOutput(s string) string {
	var b strings.Builder
	for _, r := range s {
		b.WriteString(escapeRawOutputRune(r))
	}
	return b.String()
}

func escapeRawOutputRune(r rune) string {
	switch r {
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case '\\':
		return `\\`
	default:
		if strconv.IsPrint(r) {
			return string(r)
		}
		return fmt.Sprintf(`\u%04x`, r)
	}
}
