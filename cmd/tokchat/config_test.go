package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/tokchat/internal/inference"
)

type setFlags map[string]bool

func (s setFlags) IsSet(name string) bool { return s[name] }

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigMissingOrEmpty(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)

	cfg, err = LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(writeConfig(t, "temprature: 0.5\n"))
	require.Error(t, err)
}

func TestApplyChatConfig(t *testing.T) {
	path := writeConfig(t, `
model: corpus.txt
backend: toy
system_prompt: ""
seed: 9
window_size: 128
temperature: 0.2
top_k: 7
max_tokens: 64
log_level: debug
stop: ["###"]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	oldLevel := logLevel
	t.Cleanup(func() { logLevel = oldLevel })

	o := chatOptions{backend: "ngram", system: inference.DefaultSystemPrompt, temp: 1.5, topK: 40, maxTokens: 512}
	overrides := applyChatConfig(setFlags{"temp": true, "window": true}, cfg, &o)
	params := inference.ResolveParams(overrides, o.params())

	assert.Equal(t, "corpus.txt", o.model)
	assert.Equal(t, "toy", o.backend)
	assert.Empty(t, o.system, "an explicit empty system prompt disables it")
	assert.Equal(t, int64(9), o.seed)
	assert.Zero(t, o.windowSize, "flag set on the command line wins")
	assert.Equal(t, "debug", logLevel)
	assert.Equal(t, []string{"###"}, o.stop)

	assert.Equal(t, float32(1.5), params.Temperature, "flag set on the command line wins")
	assert.Equal(t, 7, params.TopK)
	assert.Equal(t, 64, params.MaxNewTokens)
}
