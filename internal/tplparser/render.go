package tplparser

import (
	"fmt"
	"strings"
)

const (
	Llama2 = "llama2"
	ChatML = "chatml"
	Plain  = "plain"

	DefaultTemplate = Llama2
)

// Render returns (output, ok). ok=false means the template is unsupported.
func Render(opts RenderOptions) (string, bool, error) {
	if opts.Template == "" {
		opts.Template = DefaultTemplate
	}
	if out, ok, err := renderByName(opts); ok || err != nil {
		return out, ok, err
	}
	if out, ok, err := renderByTemplateSignature(opts); ok || err != nil {
		return out, ok, err
	}
	return "", false, nil
}

func renderByName(opts RenderOptions) (string, bool, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Template)) {
	case Llama2, "llama-2", "inst":
		return renderLlama2(opts)
	case ChatML, "im":
		return renderChatML(opts)
	case Plain, "none":
		return renderPlain(opts)
	default:
		return "", false, nil
	}
}

func renderByTemplateSignature(opts RenderOptions) (string, bool, error) {
	tpl := opts.Template
	switch {
	case strings.Contains(tpl, "[INST]") && strings.Contains(tpl, "[/INST]"):
		return renderLlama2(opts)
	case strings.Contains(tpl, "<|im_start|>") && strings.Contains(tpl, "<|im_end|>"):
		return renderChatML(opts)
	default:
		return "", false, nil
	}
}

// Template formats a whole conversation into one prompt string.
type Template struct {
	Name                string
	AddGenerationPrompt bool
}

// Lookup resolves a named template, failing for unknown names.
func Lookup(name string) (Template, error) {
	t := Template{Name: name, AddGenerationPrompt: true}
	if _, ok, err := t.render(nil); err != nil || !ok {
		return Template{}, fmt.Errorf("unsupported chat template %q (expected %s, %s or %s)", name, Llama2, ChatML, Plain)
	}
	return t, nil
}

// StopSequences returns the strings that mark the model starting a turn it
// should not write.
func (t Template) StopSequences() []string {
	switch strings.ToLower(strings.TrimSpace(t.Name)) {
	case Llama2, "llama-2", "inst":
		return []string{"[INST]"}
	case ChatML, "im":
		return []string{"<|im_end|>", "<|im_start|>"}
	case Plain, "none":
		return []string{"\nUser:", "\nSystem:"}
	default:
		return nil
	}
}

func (t Template) Format(msgs []Message) (string, error) {
	out, ok, err := t.render(msgs)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("unsupported chat template %q", t.Name)
	}
	return out, nil
}

func (t Template) render(msgs []Message) (string, bool, error) {
	return Render(RenderOptions{
		Template:            t.Name,
		AddGenerationPrompt: t.AddGenerationPrompt,
		Messages:            msgs,
	})
}
