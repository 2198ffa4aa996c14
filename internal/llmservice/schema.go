package llmservice

import "encoding/json"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	chatCompletionsEndpoint = "/chat/completions"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the outbound body. Exactly these four fields are sent.
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// ChatCompletionResponse is the subset of the response that is read.
//
// Missing fields decode to their zero value and are treated as follows:
// no choices and an empty message content are upstream failures; an empty
// role is read as "assistant"; an empty finish_reason is ignored.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

type Choice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// errorEnvelope matches both {"error": {"message": "..."}} and {"error": "..."}.
type errorEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

func (e errorEnvelope) text() string {
	if len(e.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(e.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
		var flat string
		if err := json.Unmarshal(e.Error, &flat); err == nil && flat != "" {
			return flat
		}
	}
	return e.Message
}
