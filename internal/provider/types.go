package provider

// MessageRole identifies the sender of a message in a conversation.
type MessageRole string

// MessageRole constants for conversation messages.
const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Message is one turn of a conversation. Order within a history is
// significant and messages are never modified after creation.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// UserMessage returns a user turn with the given content.
func UserMessage(content string) Message {
	return Message{Role: MessageRoleUser, Content: content}
}

// AssistantMessage returns an assistant turn with the given content.
func AssistantMessage(content string) Message {
	return Message{Role: MessageRoleAssistant, Content: content}
}

// CompletionRequest is the input to a Provider.Complete call.
type CompletionRequest struct {
	Messages []Message `json:"messages"`
}

// CompletionResponse is the output of a Provider.Complete call.
type CompletionResponse struct {
	Content string     `json:"content"`
	Usage   TokenUsage `json:"usage"`
}

// TokenUsage tracks token consumption for a completion when the backend
// reports it. Zero values mean "not reported".
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
