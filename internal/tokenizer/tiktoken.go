package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

type encodingInfo struct {
	vocab int
	eos   int
}

// tiktoken does not expose vocabulary sizes, so the known encodings are
// listed here. vocab covers the special tokens.
var tiktokenEncodings = map[string]encodingInfo{
	"cl100k_base": {vocab: 100277, eos: 100257},
	"o200k_base":  {vocab: 200019, eos: 199999},
	"p50k_base":   {vocab: 50281, eos: 50256},
	"r50k_base":   {vocab: 50257, eos: 50256},
}

// TikToken adapts a tiktoken BPE encoding. It has no BOS token; the
// encoding's "<|endoftext|>" is the EOS.
type TikToken struct {
	name string
	enc  *tiktoken.Tiktoken
	info encodingInfo
}

// NewTikToken loads the named encoding. tiktoken fetches the BPE ranks on
// first use unless TIKTOKEN_CACHE_DIR points at a populated cache.
func NewTikToken(encoding string) (*TikToken, error) {
	info, ok := tiktokenEncodings[encoding]
	if !ok {
		return nil, fmt.Errorf("tiktoken: unsupported encoding %q", encoding)
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("tiktoken: load %s: %w", encoding, err)
	}
	return &TikToken{name: encoding, enc: enc, info: info}, nil
}

func (t *TikToken) Name() string   { return "tiktoken:" + t.name }
func (t *TikToken) VocabSize() int { return t.info.vocab }
func (t *TikToken) BOSID() int     { return -1 }
func (t *TikToken) EOSID() int     { return t.info.eos }

func (t *TikToken) Encode(text string) ([]int, error) {
	return t.enc.Encode(text, []string{"all"}, nil), nil
}

func (t *TikToken) Decode(ids []int) (string, error) {
	for _, id := range ids {
		if id < 0 || id >= t.info.vocab {
			return "", fmt.Errorf("tiktoken: id %d out of range", id)
		}
	}
	return t.enc.Decode(ids), nil
}
