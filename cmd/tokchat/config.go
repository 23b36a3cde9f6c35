package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/samcharles93/tokchat/internal/inference"
)

// Config is the tokchat configuration file (~/.config/tokchat/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	Model     string `yaml:"model"`
	Backend   string `yaml:"backend"`
	Tokenizer string `yaml:"tokenizer"`
	Template  string `yaml:"template"`

	SystemPrompt *string `yaml:"system_prompt"`
	Threads      *int64  `yaml:"threads"`
	ContextSize  *int64  `yaml:"context_size"`
	Seed         *int64  `yaml:"seed"`
	WindowSize   *int64  `yaml:"window_size"`
	ChunkSize    *int64  `yaml:"chunk_size"`

	// Sampling defaults
	MaxTokens        *int     `yaml:"max_tokens"`
	Temperature      *float32 `yaml:"temperature"`
	TopK             *int     `yaml:"top_k"`
	TopP             *float32 `yaml:"top_p"`
	RepeatPenalty    *float32 `yaml:"repeat_penalty"`
	FrequencyPenalty *float32 `yaml:"frequency_penalty"`
	PresencePenalty  *float32 `yaml:"presence_penalty"`
	Stop             []string `yaml:"stop"`

	// Output
	StreamMode string `yaml:"stream_mode"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
}

// LoadConfig reads the config file at path. A missing or empty file yields
// a zero Config; unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

type flagSetter interface {
	IsSet(name string) bool
}

// applyChatConfig copies config values into o wherever the matching flag
// was not set on the command line or through the environment. Sampling
// values are returned as overrides for inference.ResolveParams.
func applyChatConfig(c flagSetter, cfg Config, o *chatOptions) inference.ParamOptions {
	setString := func(flag string, dst *string, v string) {
		if v != "" && !c.IsSet(flag) {
			*dst = v
		}
	}
	setInt := func(flag string, dst *int64, v *int64) {
		if v != nil && !c.IsSet(flag) {
			*dst = *v
		}
	}
	setString("model", &o.model, expandHome(cfg.Model))
	setString("backend", &o.backend, cfg.Backend)
	setString("tokenizer", &o.tokenizer, cfg.Tokenizer)
	setString("template", &o.template, cfg.Template)
	setString("stream-mode", &o.streamMode, cfg.StreamMode)
	setString("log-level", &logLevel, cfg.LogLevel)
	setString("log-format", &logFormat, cfg.LogFormat)
	if cfg.SystemPrompt != nil && !c.IsSet("system") {
		o.system = *cfg.SystemPrompt
	}
	if cfg.Stop != nil && !c.IsSet("stop") {
		o.stop = cfg.Stop
	}
	setInt("threads", &o.threads, cfg.Threads)
	setInt("ctx", &o.contextSize, cfg.ContextSize)
	setInt("seed", &o.seed, cfg.Seed)
	setInt("window", &o.windowSize, cfg.WindowSize)
	setInt("chunk-size", &o.chunkSize, cfg.ChunkSize)

	var p inference.ParamOptions
	if !c.IsSet("max-tokens") {
		p.MaxNewTokens = cfg.MaxTokens
	}
	if !c.IsSet("temp") {
		p.Temperature = cfg.Temperature
	}
	if !c.IsSet("top-k") {
		p.TopK = cfg.TopK
	}
	if !c.IsSet("top-p") {
		p.TopP = cfg.TopP
	}
	if !c.IsSet("repeat-penalty") {
		p.RepeatPenalty = cfg.RepeatPenalty
	}
	if !c.IsSet("freq-penalty") {
		p.FrequencyPenalty = cfg.FrequencyPenalty
	}
	if !c.IsSet("presence-penalty") {
		p.PresencePenalty = cfg.PresencePenalty
	}
	return p
}
