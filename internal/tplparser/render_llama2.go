package tplparser

import (
	"fmt"
	"strings"
)

// renderLlama2 produces the Llama-2 instruction layout. All system messages
// are merged into a single <<SYS>> block attached to the first user turn.
// The prompt already ends where the assistant reply starts, so
// AddGenerationPrompt has nothing to add.
func renderLlama2(opts RenderOptions) (string, bool, error) {
	var b strings.Builder

	var system []string
	for _, m := range opts.Messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
		}
	}

	firstUser := true
	for _, m := range opts.Messages {
		switch m.Role {
		case RoleSystem:
		case RoleUser:
			b.WriteString("[INST] ")
			if firstUser && len(system) > 0 {
				b.WriteString("<<SYS>>\n")
				b.WriteString(strings.Join(system, "\n"))
				b.WriteString("\n<</SYS>>\n")
			}
			firstUser = false
			b.WriteString(m.Content)
			b.WriteString(" [/INST]\n")
		case RoleAssistant:
			b.WriteString(m.Content)
			b.WriteString("\n")
		default:
			return "", false, fmt.Errorf("llama2: unsupported role %q", m.Role)
		}
	}
	return b.String(), true, nil
}
