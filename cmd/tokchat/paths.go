package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

const envModel = "TOKCHAT_MODEL"

// stdinIsTTY is a small seam for tests.
var stdinIsTTY = func() bool { return isTerminal(os.Stdin) }

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	st, err := f.Stat()
	if err != nil {
		return false
	}
	return (st.Mode() & os.ModeCharDevice) != 0
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tokchat", "config.yaml")
}

// expandHome resolves a leading "~/" against the user's home directory.
func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

func trimTrailingNewline(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '\r' {
		s = s[:len(s)-1]
	}
	return s
}

// lineReader reads one line of user input after printing prompt.
type lineReader interface {
	ReadLine(prompt string) (string, error)
}

type plainReader struct {
	r   interface{ ReadString(byte) (string, error) }
	out io.Writer
}

// ReadLine returns io.EOF only when no input is left; a final line without
// a newline is still returned.
func (p *plainReader) ReadLine(prompt string) (string, error) {
	_, _ = io.WriteString(p.out, prompt)
	s, err := p.r.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", err
	}
	return trimTrailingNewline(s), nil
}
