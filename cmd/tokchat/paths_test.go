package main

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPlainReader(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	r := &plainReader{r: bufio.NewReader(strings.NewReader("first\r\nlast")), out: &out}

	for _, want := range []string{"first", "last"} {
		got, err := r.ReadLine("> ")
		if err != nil {
			t.Fatalf("ReadLine: %v", err)
		}
		if got != want {
			t.Fatalf("ReadLine = %q, want %q", got, want)
		}
	}
	if _, err := r.ReadLine("> "); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if out.String() != "> > > " {
		t.Fatalf("prompts = %q", out.String())
	}
}

func TestExpandHome(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/models/a.json"); got != filepath.Join(home, "models", "a.json") {
		t.Fatalf("expandHome = %q", got)
	}
	if got := expandHome(" rel/a.json "); got != "rel/a.json" {
		t.Fatalf("expandHome = %q", got)
	}
	if got := expandHome("~user/x"); got != "~user/x" {
		t.Fatalf("expandHome = %q", got)
	}
}

func TestNewLineReaderFallsBackToPlain(t *testing.T) {
	t.Parallel()

	if _, ok := newLineReader(strings.NewReader(""), io.Discard).(*plainReader); !ok {
		t.Fatal("expected plain reader for non-terminal input")
	}
}
