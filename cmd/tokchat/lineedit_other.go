//go:build !linux

package main

import (
	"bufio"
	"io"
)

func newLineReader(in io.Reader, out io.Writer) lineReader {
	return &plainReader{r: bufio.NewReader(in), out: out}
}
