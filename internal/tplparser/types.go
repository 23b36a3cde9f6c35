package tplparser

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry of a conversation.
type Message struct {
	Role    string
	Content string
}

type RenderOptions struct {
	// Template is either a template name (llama2, chatml, plain) or the raw
	// text of a chat template, which is matched by signature.
	Template            string
	AddGenerationPrompt bool
	Messages            []Message
}
