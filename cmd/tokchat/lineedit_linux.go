//go:build linux

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// newLineReader returns a raw-mode editor with history when in is the
// terminal, and a plain buffered reader otherwise.
func newLineReader(in io.Reader, out io.Writer) lineReader {
	if f, ok := in.(*os.File); ok && f == os.Stdin && stdinIsTTY() {
		return &ttyReader{fd: int(f.Fd()), in: f, out: out}
	}
	return &plainReader{r: bufio.NewReader(in), out: out}
}

type ttyReader struct {
	fd      int
	in      io.Reader
	out     io.Writer
	history []string
}

// lineState is the edit buffer of the line being typed.
type lineState struct {
	out    io.Writer
	prompt string
	line   []byte
	cursor int
}

func (s *lineState) redraw() {
	_, _ = fmt.Fprintf(s.out, "\r%s%s\x1b[K", s.prompt, s.line)
	if s.cursor < len(s.line) {
		_, _ = fmt.Fprintf(s.out, "\r%s%s", s.prompt, s.line[:s.cursor])
	}
}

func (s *lineState) set(text string) {
	s.line = append(s.line[:0], text...)
	s.cursor = len(s.line)
	s.redraw()
}

func (s *lineState) insert(b byte) {
	s.line = append(s.line, 0)
	copy(s.line[s.cursor+1:], s.line[s.cursor:])
	s.line[s.cursor] = b
	s.cursor++
	s.redraw()
}

func isBlank(b byte) bool { return b == ' ' || b == '\t' }

// wordStart returns the start of the word before the cursor.
func (s *lineState) wordStart() int {
	i := s.cursor
	for i > 0 && isBlank(s.line[i-1]) {
		i--
	}
	for i > 0 && !isBlank(s.line[i-1]) {
		i--
	}
	return i
}

// wordEnd returns the end of the word after the cursor.
func (s *lineState) wordEnd() int {
	i := s.cursor
	for i < len(s.line) && isBlank(s.line[i]) {
		i++
	}
	for i < len(s.line) && !isBlank(s.line[i]) {
		i++
	}
	return i
}

func (s *lineState) move(to int) {
	if to != s.cursor {
		s.cursor = to
		s.redraw()
	}
}

func (s *lineState) cut(from, to int) {
	if from >= to {
		return
	}
	s.line = append(s.line[:from], s.line[to:]...)
	s.cursor = from
	s.redraw()
}

func (t *ttyReader) ReadLine(prompt string) (string, error) {
	old, err := unix.IoctlGetTermios(t.fd, unix.TCGETS)
	if err != nil {
		return "", err
	}
	raw := *old
	raw.Lflag &^= unix.ICANON | unix.ECHO
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(t.fd, unix.TCSETS, &raw); err != nil {
		return "", err
	}
	defer func() { _ = unix.IoctlSetTermios(t.fd, unix.TCSETS, old) }()

	s := &lineState{out: t.out, prompt: prompt, line: make([]byte, 0, 256)}
	_, _ = io.WriteString(t.out, prompt)

	histPos := len(t.history)
	draft := ""
	csi := func(seq string) {
		switch seq {
		case "A":
			if histPos == 0 {
				return
			}
			if histPos == len(t.history) {
				draft = string(s.line)
			}
			histPos--
			s.set(t.history[histPos])
		case "B":
			if histPos >= len(t.history) {
				return
			}
			histPos++
			if histPos == len(t.history) {
				s.set(draft)
			} else {
				s.set(t.history[histPos])
			}
		case "D":
			s.move(max(s.cursor-1, 0))
		case "C":
			s.move(min(s.cursor+1, len(s.line)))
		case "H", "1~":
			s.move(0)
		case "F", "4~":
			s.move(len(s.line))
		case "3~":
			s.cut(s.cursor, min(s.cursor+1, len(s.line)))
		case "1;5D", "5D":
			s.move(s.wordStart())
		case "1;5C", "5C":
			s.move(s.wordEnd())
		case "3;5~":
			s.cut(s.cursor, s.wordEnd())
		}
	}

	var (
		buf    [16]byte
		esc    int
		escSeq strings.Builder
	)
	for {
		n, err := t.in.Read(buf[:])
		if err != nil {
			return "", err
		}
		for _, b := range buf[:n] {
			switch esc {
			case 1:
				esc = 0
				switch b {
				case '[':
					esc = 2
					escSeq.Reset()
				case 'b', 'B':
					s.move(s.wordStart())
				case 'f', 'F':
					s.move(s.wordEnd())
				case 127:
					s.cut(s.wordStart(), s.cursor)
				}
				continue
			case 2:
				escSeq.WriteByte(b)
				if (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '~' {
					csi(escSeq.String())
					esc = 0
				}
				continue
			}

			switch b {
			case 27:
				esc = 1
			case '\r', '\n':
				_, _ = io.WriteString(t.out, "\r\n")
				text := string(s.line)
				if strings.TrimSpace(text) != "" {
					t.history = append(t.history, text)
				}
				return text, nil
			case 3: // Ctrl+C
				_, _ = io.WriteString(t.out, "^C\r\n")
				return "", io.EOF
			case 4: // Ctrl+D
				if len(s.line) == 0 {
					_, _ = io.WriteString(t.out, "\r\n")
					return "", io.EOF
				}
				s.cut(s.cursor, min(s.cursor+1, len(s.line)))
			case 127, 8:
				s.cut(max(s.cursor-1, 0), s.cursor)
			case 1: // Ctrl+A
				s.move(0)
			case 5: // Ctrl+E
				s.move(len(s.line))
			case 11: // Ctrl+K
				s.cut(s.cursor, len(s.line))
			case 21: // Ctrl+U
				s.cut(0, s.cursor)
			case 23: // Ctrl+W
				s.cut(s.wordStart(), s.cursor)
			default:
				if b >= 32 {
					s.insert(b)
				}
			}
		}
	}
}
