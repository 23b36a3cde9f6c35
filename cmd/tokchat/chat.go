package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tokchat/internal/backend"
	"github.com/samcharles93/tokchat/internal/inference"
	"github.com/samcharles93/tokchat/internal/logger"
	"github.com/samcharles93/tokchat/internal/logits"
	"github.com/samcharles93/tokchat/internal/tplparser"
)

type chatOptions struct {
	model      string
	backend    string
	tokenizer  string
	template   string
	system     string
	noSystem   bool
	prompt     string
	streamMode string
	raw        bool
	stop       []string

	threads     int64
	contextSize int64
	seed        int64
	windowSize  int64
	chunkSize   int64

	maxTokens        int64
	temp             float64
	topK             int64
	topP             float64
	repeatPenalty    float64
	frequencyPenalty float64
	presencePenalty  float64
}

func (o *chatOptions) params() inference.Params {
	return inference.Params{
		Temperature:      float32(o.temp),
		TopK:             int(o.topK),
		TopP:             float32(o.topP),
		RepeatPenalty:    float32(o.repeatPenalty),
		FrequencyPenalty: float32(o.frequencyPenalty),
		PresencePenalty:  float32(o.presencePenalty),
		MaxNewTokens:     int(o.maxTokens),
	}
}

func chatFlags(o *chatOptions) []cli.Flag {
	d := inference.DefaultParams()
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "model",
			Aliases:     []string{"m"},
			Usage:       "model path (.json n-gram model or .txt corpus for the ngram backend)",
			Sources:     cli.EnvVars(envModel),
			Destination: &o.model,
		},
		&cli.StringFlag{
			Name:        "backend",
			Usage:       "model backend (" + backend.Available() + ")",
			Value:       backend.Default,
			Destination: &o.backend,
		},
		&cli.StringFlag{
			Name:        "tokenizer",
			Usage:       "tokenizer (byte, tiktoken:<encoding>); empty uses the model's",
			Destination: &o.tokenizer,
		},
		&cli.StringFlag{
			Name:        "template",
			Usage:       "chat template (llama2, chatml, plain)",
			Value:       tplparser.DefaultTemplate,
			Destination: &o.template,
		},
		&cli.StringFlag{
			Name:        "system",
			Aliases:     []string{"sys"},
			Usage:       "system prompt",
			Value:       inference.DefaultSystemPrompt,
			Destination: &o.system,
		},
		&cli.BoolFlag{
			Name:        "no-system",
			Usage:       "start the conversation without a system prompt",
			Destination: &o.noSystem,
		},
		&cli.StringFlag{
			Name:        "prompt",
			Aliases:     []string{"p"},
			Usage:       "run a single turn with this message and exit",
			Destination: &o.prompt,
		},
		&cli.StringSliceFlag{
			Name:        "stop",
			Usage:       "end the reply at this text (repeatable); defaults to the template's turn markers",
			Destination: &o.stop,
		},
		&cli.StringFlag{
			Name:        "stream-mode",
			Usage:       "output mode (instant, typewriter, quiet)",
			Value:       string(StreamInstant),
			Destination: &o.streamMode,
		},
		&cli.BoolFlag{
			Name:        "raw",
			Usage:       "escape control characters in generated text",
			Destination: &o.raw,
		},
		&cli.Int64Flag{
			Name:        "threads",
			Usage:       "threads used while loading the model",
			Value:       int64(runtime.NumCPU()),
			Destination: &o.threads,
		},
		&cli.Int64Flag{
			Name:        "ctx",
			Aliases:     []string{"context-size", "c"},
			Usage:       "context size in tokens (0 = unbounded)",
			Value:       4096,
			Destination: &o.contextSize,
		},
		&cli.Int64Flag{
			Name:        "seed",
			Usage:       "sampling RNG seed (unset or negative = random)",
			Value:       -1,
			Destination: &o.seed,
		},
		&cli.Int64Flag{
			Name:        "window",
			Aliases:     []string{"recent-window"},
			Usage:       "recent-token window used for penalties",
			Value:       logits.DefaultWindowSize,
			Destination: &o.windowSize,
		},
		&cli.Int64Flag{
			Name:        "chunk-size",
			Usage:       "prompt tokens evaluated per backend call",
			Value:       inference.DefaultChunkSize,
			Destination: &o.chunkSize,
		},
		&cli.Int64Flag{
			Name:        "max-tokens",
			Aliases:     []string{"max-new-tokens", "n"},
			Usage:       "maximum tokens generated per turn",
			Value:       int64(d.MaxNewTokens),
			Destination: &o.maxTokens,
		},
		&cli.Float64Flag{
			Name:        "temp",
			Aliases:     []string{"temperature", "t"},
			Usage:       "sampling temperature (0 = greedy)",
			Value:       float64(d.Temperature),
			Destination: &o.temp,
		},
		&cli.Int64Flag{
			Name:        "top-k",
			Aliases:     []string{"top_k", "topk"},
			Usage:       "top-k sampling parameter (0 = disabled)",
			Value:       int64(d.TopK),
			Destination: &o.topK,
		},
		&cli.Float64Flag{
			Name:        "top-p",
			Aliases:     []string{"top_p", "topp"},
			Usage:       "nucleus sampling threshold (1.0 = disabled)",
			Value:       float64(d.TopP),
			Destination: &o.topP,
		},
		&cli.Float64Flag{
			Name:        "repeat-penalty",
			Aliases:     []string{"repeat_penalty"},
			Usage:       "repetition penalty (1.0 = disabled)",
			Value:       float64(d.RepeatPenalty),
			Destination: &o.repeatPenalty,
		},
		&cli.Float64Flag{
			Name:        "freq-penalty",
			Aliases:     []string{"frequency-penalty"},
			Usage:       "penalty per previous occurrence of a token",
			Destination: &o.frequencyPenalty,
		},
		&cli.Float64Flag{
			Name:        "presence-penalty",
			Usage:       "penalty for any previous occurrence of a token",
			Destination: &o.presencePenalty,
		},
	}
}

func chatCmd() *cli.Command {
	var o chatOptions
	return &cli.Command{
		Name:  "chat",
		Usage: "Chat with a model, streaming the reply token by token",
		Flags: chatFlags(&o),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := LoadConfig(configPath())
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: config: %v", err), 1)
			}
			overrides := applyChatConfig(c, cfg, &o)
			params := inference.ResolveParams(overrides, o.params())

			log, err := newLogger(os.Stderr)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			return runChat(ctx, &o, params, chatIO{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}, log)
		},
	}
}

type chatIO struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func runChat(ctx context.Context, o *chatOptions, params inference.Params, tio chatIO, log logger.Logger) error {
	if err := params.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	mode, err := parseStreamMode(o.streamMode)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	tpl, err := tplparser.Lookup(o.template)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	if strings.TrimSpace(o.model) == "" {
		return cli.Exit(fmt.Sprintf("error: --model is required unless %s is set", envModel), 1)
	}

	b, err := inference.LoadBackend(o.backend, expandHome(o.model), backend.Params{
		ContextSize: int(o.contextSize),
		Threads:     int(o.threads),
		Seed:        o.seed,
		Tokenizer:   o.tokenizer,
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	defer func() { _ = b.Close() }()

	system := o.system
	if o.noSystem {
		system = ""
	}
	sess, err := inference.NewSession(b, inference.SessionConfig{
		Params:       params,
		Seed:         &o.seed,
		SystemPrompt: system,
		WindowSize:   int(o.windowSize),
		ChunkSize:    int(o.chunkSize),
		Formatter:    tpl,
		Stop:         o.stop,
		Log:          log,
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	log.Info("model loaded", "backend", b.Name(), "model", o.model, "vocab", b.VocabSize(), "template", tpl.Name, "seed", sess.Seed())

	stream := NewStreamWriter(tio.out, mode, o.raw)
	if o.prompt != "" {
		_, err := runTurn(ctx, sess, o.prompt, stream, tio)
		if err != nil {
			return cli.Exit(fmt.Sprintf("error: %v", err), 1)
		}
		return nil
	}

	_, _ = fmt.Fprintln(tio.out, "tokchat ready. Type your message and press Enter. /exit to quit.")
	lines := newLineReader(tio.in, tio.out)
	for {
		input, err := lines.ReadLine("\nUser> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return cli.Exit(fmt.Sprintf("error: read input: %v", err), 1)
		}
		switch strings.TrimSpace(input) {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/reset":
			sess.Reset()
			_, _ = fmt.Fprintln(tio.errOut, "conversation reset")
			continue
		case "/stats":
			n, capacity := sess.Window()
			_, _ = fmt.Fprintf(tio.errOut, "session=%s turns=%d window=%d/%d seed=%d\n", sess.ID(), sess.Turns(), n, capacity, sess.Seed())
			continue
		}

		_, _ = fmt.Fprint(tio.out, "Assistant> ")
		if _, err := runTurn(ctx, sess, input, stream, tio); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			_, _ = fmt.Fprintf(tio.errOut, "error: %v\n", err)
		}
	}
}

// runTurn streams one reply and prints the turn statistics to errOut.
func runTurn(ctx context.Context, sess *inference.Session, input string, stream *StreamWriter, tio chatIO) (*inference.Result, error) {
	res, err := sess.Turn(ctx, input, stream.Write)
	stream.Flush()
	_, _ = fmt.Fprintln(tio.out)
	if res != nil {
		_, _ = fmt.Fprintf(tio.errOut, "Stats: %.2f TPS (%d tokens in %s, %s)\n",
			res.Stats.TPS, res.Stats.TokensGenerated, res.Stats.Duration.Round(time.Millisecond), res.State)
	}
	return res, err
}
