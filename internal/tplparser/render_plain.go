package tplparser

import (
	"fmt"
	"strings"
)

// renderPlain writes one "Role: content" block per message.
func renderPlain(opts RenderOptions) (string, bool, error) {
	var b strings.Builder
	for _, m := range opts.Messages {
		label, err := roleLabel(m.Role)
		if err != nil {
			return "", false, err
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	if opts.AddGenerationPrompt {
		b.WriteString("Assistant: ")
	}
	return b.String(), true, nil
}

func roleLabel(role string) (string, error) {
	switch role {
	case RoleSystem:
		return "System", nil
	case RoleUser:
		return "User", nil
	case RoleAssistant:
		return "Assistant", nil
	default:
		return "", fmt.Errorf("plain: unsupported role %q", role)
	}
}
