package tplparser

import "strings"

func trimString(v string) string {
	return strings.TrimSpace(v)
}

// LastUserText returns the content of the newest user message.
func LastUserText(msgs []Message) (string, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleUser {
			return msgs[i].Content, true
		}
	}
	return "", false
}
