package types

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // RoleSystem carries standing instructions for the model.
	RoleUser      MessageRole = "user"      // RoleUser carries the request text.
	RoleAssistant MessageRole = "assistant" // RoleAssistant carries generated text.
)

// Message is a single chat message exchanged with an LLM provider.
type Message struct {
	Role    MessageRole
	Content string
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) *Message {
	return &Message{Role: RoleAssistant, Content: content}
}

// ModelInfo describes the model behind a provider.
type ModelInfo struct {
	// Metadata holds provider specific details such as a non-default base URL.
	Metadata map[string]interface{}

	// Provider is the provider family, e.g. "openai".
	Provider string

	// Name is the model identifier sent with each request.
	Name string

	// MaxTokens is the advertised output token limit, when known.
	MaxTokens int
}
