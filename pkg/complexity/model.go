package complexity

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const estimatePromptLimit = 2000

var ratingPattern = regexp.MustCompile(`[1-5]`)

// ModelEstimator asks a chat model to rate translation difficulty 1..5.
// The call is bounded by its own short timeout, well under the translation
// timeout, because a stalled estimate must not stall the whole unit.
type ModelEstimator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewModelEstimator(client *openai.Client, model string, timeout time.Duration) *ModelEstimator {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &ModelEstimator{client: client, model: model, timeout: timeout}
}

func (m *ModelEstimator) Estimate(ctx context.Context, text, subject string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	sample := text
	if len(sample) > estimatePromptLimit {
		sample = sample[:estimatePromptLimit]
	}

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(
					"Rate the translation difficulty of this business email from 1 (trivial) to 5 (very hard). Respond with the single digit only.\n\nSubject: %s\n\n%s",
					subject, sample),
			},
		},
		MaxTokens:   4,
		Temperature: 0,
	})
	if err != nil {
		return 0, fmt.Errorf("complexity estimate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("complexity estimate: empty response")
	}

	digit := ratingPattern.FindString(resp.Choices[0].Message.Content)
	if digit == "" {
		return 0, fmt.Errorf("complexity estimate: no rating in %q", resp.Choices[0].Message.Content)
	}
	rating, _ := strconv.Atoi(digit)
	return rating, nil
}
