package tokenizer

import (
	"fmt"
	"strings"
)

const (
	// ByteBOS and ByteEOS follow the 256 raw byte ids.
	ByteBOS = 256
	ByteEOS = 257

	byteVocab = 258

	bosText = "<s>"
	eosText = "</s>"
)

// Byte is a byte-level tokenizer: every byte is its own token and the two
// sentinel strings "<s>" and "</s>" map to dedicated ids.
type Byte struct{}

func NewByte() Byte { return Byte{} }

func (Byte) VocabSize() int { return byteVocab }
func (Byte) BOSID() int     { return ByteBOS }
func (Byte) EOSID() int     { return ByteEOS }

func (Byte) Encode(text string) ([]int, error) {
	ids := make([]int, 0, len(text))
	for i := 0; i < len(text); {
		switch {
		case strings.HasPrefix(text[i:], eosText):
			ids = append(ids, ByteEOS)
			i += len(eosText)
		case strings.HasPrefix(text[i:], bosText):
			ids = append(ids, ByteBOS)
			i += len(bosText)
		default:
			ids = append(ids, int(text[i]))
			i++
		}
	}
	return ids, nil
}

// Decode renders byte ids verbatim and drops the sentinels. A single byte of
// a multi-byte rune decodes to that raw byte, so concatenated pieces
// reassemble valid UTF-8.
func (Byte) Decode(ids []int) (string, error) {
	var b strings.Builder
	b.Grow(len(ids))
	for _, id := range ids {
		switch {
		case id >= 0 && id < 256:
			b.WriteByte(byte(id))
		case id == ByteBOS, id == ByteEOS:
		default:
			return "", fmt.Errorf("byte tokenizer: id %d out of range", id)
		}
	}
	return b.String(), nil
}
