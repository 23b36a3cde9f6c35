package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteRoundTripUTF8Pieces(t *testing.T) {
	t.Parallel()

	tok := NewByte()
	text := "héllo, wörld"
	ids, err := tok.Encode(text)
	require.NoError(t, err)
	assert.Len(t, ids, len(text))

	var joined string
	for _, id := range ids {
		piece, err := tok.Decode([]int{id})
		require.NoError(t, err)
		joined += piece
	}
	assert.Equal(t, text, joined)
}

func TestByteSentinels(t *testing.T) {
	t.Parallel()

	tok := NewByte()
	ids, err := tok.Encode("<s>hi</s>")
	require.NoError(t, err)
	assert.Equal(t, []int{ByteBOS, 'h', 'i', ByteEOS}, ids)

	out, err := tok.Decode(ids)
	require.NoError(t, err)
	assert.Equal(t, "hi", out)

	_, err = tok.Decode([]int{byteVocab})
	assert.Error(t, err)
}

func TestEncodeWithBOS(t *testing.T) {
	t.Parallel()

	tok := NewByte()
	ids, err := EncodeWithBOS(tok, "a", true)
	require.NoError(t, err)
	assert.Equal(t, []int{ByteBOS, 'a'}, ids)

	ids, err = EncodeWithBOS(tok, "a", false)
	require.NoError(t, err)
	assert.Equal(t, []int{'a'}, ids)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "byte", " Bytes "} {
		tok, err := Open(name)
		require.NoError(t, err, name)
		assert.Equal(t, byteVocab, tok.VocabSize())
	}

	_, err := Open("sentencepiece")
	assert.Error(t, err)

	_, err = Open("tiktoken:not_an_encoding")
	assert.Error(t, err)
}
