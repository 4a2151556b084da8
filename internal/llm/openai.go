package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// Message is a minimal chat message passed to the generation provider.
// Role must be one of: "system", "user", or "assistant".
type Message struct {
	Role    string
	Content string
}

// Request describes one completion call. JSONMode asks the provider for a
// structured JSON object response (used by the classifier, the assessor, and
// the record-grounded nodes).
type Request struct {
	System      string
	Turns       []Message
	Temperature float32
	MaxTokens   int
	JSONMode    bool
}

// Client is the generation provider as seen by the pipeline. Every call site
// must treat an error as expected and degrade to a safe local fallback;
// provider availability must never decide whether a turn completes.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// OpenAIClient calls the OpenAI chat completion API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient constructs an OpenAI-backed client for the given model.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Complete sends the system prompt plus turns to the chat completion API and
// returns the assistant's text.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not initialized")
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Turns)+1)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Turns {
		role := m.Role
		if role != openai.ChatMessageRoleSystem && role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			// coerce anything unknown to user
			role = openai.ChatMessageRoleUser
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	ccReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		ccReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, ccReq)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
