package llm

import "context"

type Message struct {
	Role    string
	Content string
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client is the oracle contract: role-tagged messages in, text out.
type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}
