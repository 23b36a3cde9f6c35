package tokenizer

import (
	"fmt"
	"strings"
)

// Tokenizer maps text to token ids and back.
type Tokenizer interface {
	Encode(text string) ([]int, error)
	Decode(ids []int) (string, error)
	VocabSize() int
	// BOSID returns -1 when there is no beginning-of-sequence token.
	BOSID() int
	EOSID() int
}

// Open returns the tokenizer selected by name. Accepted forms are "byte"
// (the default when name is empty) and "tiktoken:<encoding>".
func Open(name string) (Tokenizer, error) {
	s := strings.TrimSpace(name)
	kind, arg, _ := strings.Cut(s, ":")
	switch strings.ToLower(kind) {
	case "", "byte", "bytes":
		return NewByte(), nil
	case "tiktoken":
		if arg == "" {
			arg = "cl100k_base"
		}
		return NewTikToken(arg)
	default:
		return nil, fmt.Errorf("unknown tokenizer %q (expected byte or tiktoken:<encoding>)", name)
	}
}

// EncodeWithBOS encodes text and prefixes the BOS token when requested and
// available.
func EncodeWithBOS(tok Tokenizer, text string, addBOS bool) ([]int, error) {
	ids, err := tok.Encode(text)
	if err != nil {
		return nil, err
	}
	if bos := tok.BOSID(); addBOS && bos >= 0 {
		ids = append([]int{bos}, ids...)
	}
	return ids, nil
}
