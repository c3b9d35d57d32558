package bridge

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Message roles, matching the chat API convention.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries everything a generator needs for one completion. The
// message order on the wire is: persona system prompt, history, the dynamic
// state note as a trailing system turn, then the user input when present.
type Request struct {
	System      string
	History     []Message
	Note        string
	UserInput   string
	Temperature float32
}

// Generator produces a reply for a request. Implementations must be safe for
// concurrent use; the agent calls from both its life loop and the stimulus
// path.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// OpenAIGenerator talks to an OpenAI-compatible chat completion endpoint,
// which covers the hosted API as well as local servers such as Ollama.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator builds a generator for the given endpoint. An empty
// baseURL means the hosted API default.
func NewOpenAIGenerator(baseURL, apiKey, model string) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// buildMessages lays out the wire payload: persona, history, state note,
// user input. Empty note and input are omitted.
func buildMessages(req Request) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.History)+3)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.System,
	})
	for _, m := range req.History {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	if req.Note != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.Note,
		})
	}
	if req.UserInput != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: req.UserInput,
		})
	}
	return msgs
}

// Generate implements Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    buildMessages(req),
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// Simulated is a stand-in generator for running without a language model.
// It echoes the state note so the internal state stays visible in replies.
type Simulated struct{}

// Generate implements Generator.
func (Simulated) Generate(_ context.Context, req Request) (string, error) {
	if req.Note == "" {
		return "[simulated reply]", nil
	}
	return "[simulated reply] " + req.Note, nil
}
