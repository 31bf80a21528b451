package engines

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"mail_trans_engine/config"
)

// OpenAI is the hosted-model backend.
type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(cfg config.OpenAI) *OpenAI {
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	var client *openai.Client
	if cfg.ApiKey != "" {
		client = openai.NewClient(cfg.ApiKey)
	}
	return &OpenAI{client: client, model: model}
}

func (o *OpenAI) Name() string { return NameOpenAI }

func (o *OpenAI) Available() bool { return o.client != nil }

func (o *OpenAI) Translate(ctx context.Context, req Request) (string, error) {
	if o.client == nil {
		return "", fmt.Errorf("openai translate: no api key configured")
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a professional translator for business correspondence.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: translationPrompt(req),
			},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("openai translate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai translate: no choices returned")
	}

	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", fmt.Errorf("openai translate: empty result")
	}
	return translated, nil
}
