package tplparser

import (
	"fmt"
	"strings"
)

func renderChatML(opts RenderOptions) (string, bool, error) {
	var b strings.Builder

	msgs := opts.Messages
	var systemParts []string
	for len(msgs) > 0 && strings.EqualFold(msgs[0].Role, RoleSystem) {
		systemParts = append(systemParts, msgs[0].Content)
		msgs = msgs[1:]
	}
	if len(systemParts) > 0 {
		b.WriteString("<|im_start|>system\n")
		b.WriteString(strings.Join(systemParts, "\n"))
		b.WriteString("<|im_end|>\n")
	}

	for _, m := range msgs {
		switch m.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return "", false, fmt.Errorf("chatml: unsupported role %q", m.Role)
		}
		b.WriteString("<|im_start|>")
		b.WriteString(m.Role)
		b.WriteString("\n")
		b.WriteString(trimString(m.Content))
		b.WriteString("<|im_end|>\n")
	}

	if opts.AddGenerationPrompt {
		b.WriteString("<|im_start|>assistant\n")
	}
	return b.String(), true, nil
}
