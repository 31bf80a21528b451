package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"mail_trans_engine/config"
)

const completionWindow = "24h"

// OpenAIProvider drives the hosted batch API: upload a jsonl request file,
// poll the batch, download the jsonl output.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(cfg config.OpenAI) *OpenAIProvider {
	model := cfg.BatchModel
	if model == "" {
		model = cfg.Model
	}
	return &OpenAIProvider{
		client: openai.NewClient(cfg.ApiKey),
		model:  model,
	}
}

func (p *OpenAIProvider) Submit(ctx context.Context, lines []ProviderLine) (string, error) {
	batchLines := make([]openai.BatchLineItem, 0, len(lines))
	for _, line := range lines {
		batchLines = append(batchLines, openai.BatchChatCompletionRequest{
			CustomID: line.CustomId,
			Method:   "POST",
			URL:      openai.BatchEndpointChatCompletions,
			Body: openai.ChatCompletionRequest{
				Model: p.model,
				Messages: []openai.ChatCompletionMessage{
					{
						Role:    openai.ChatMessageRoleSystem,
						Content: "You are a professional translator for business correspondence. Return only the translation, nothing else.",
					},
					{
						Role:    openai.ChatMessageRoleUser,
						Content: linePrompt(line),
					},
				},
			},
		})
	}

	resp, err := p.client.CreateBatchWithUploadFile(ctx, openai.CreateBatchWithUploadFileRequest{
		Endpoint:         openai.BatchEndpointChatCompletions,
		CompletionWindow: completionWindow,
		UploadBatchFileRequest: openai.UploadBatchFileRequest{
			FileName: "translations.jsonl",
			Lines:    batchLines,
		},
	})
	if err != nil {
		return "", fmt.Errorf("create batch: %w", err)
	}
	return resp.ID, nil
}

func (p *OpenAIProvider) Status(ctx context.Context, providerJobId string) (*ProviderStatus, error) {
	resp, err := p.client.RetrieveBatch(ctx, providerJobId)
	if err != nil {
		return nil, fmt.Errorf("retrieve batch: %w", err)
	}

	status := &ProviderStatus{Status: resp.Status}
	if resp.OutputFileID != nil {
		status.OutputFileId = *resp.OutputFileID
	}
	return status, nil
}

func (p *OpenAIProvider) Results(ctx context.Context, outputFileId string) ([]ProviderResult, error) {
	content, err := p.client.GetFileContent(ctx, outputFileId)
	if err != nil {
		return nil, fmt.Errorf("download batch output: %w", err)
	}
	defer content.Close()

	return parseResults(content)
}

func linePrompt(line ProviderLine) string {
	var b strings.Builder
	if line.SourceLang == "" {
		fmt.Fprintf(&b, "Translate the following text into %s.", line.TargetLang)
	} else {
		fmt.Fprintf(&b, "Translate the following text from %s into %s.", line.SourceLang, line.TargetLang)
	}
	b.WriteString("\n\n")
	b.WriteString(line.Text)
	return b.String()
}

// outputLine is one jsonl line of the provider's batch output file.
type outputLine struct {
	CustomID string `json:"custom_id"`
	Response *struct {
		StatusCode int                           `json:"status_code"`
		Body       openai.ChatCompletionResponse `json:"body"`
	} `json:"response"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// parseResults decodes the jsonl output. A malformed line fails only that
// line; the rest of the file is still harvested.
func parseResults(r io.Reader) ([]ProviderResult, error) {
	var results []ProviderResult

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var line outputLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			results = append(results, ProviderResult{
				CustomId: line.CustomID,
				Err:      fmt.Sprintf("malformed output line: %v", err),
			})
			continue
		}

		result := ProviderResult{CustomId: line.CustomID}
		switch {
		case line.Error != nil:
			result.Err = line.Error.Message
		case line.Response == nil || len(line.Response.Body.Choices) == 0:
			result.Err = "batch output line has no completion"
		case line.Response.StatusCode >= 300:
			result.Err = fmt.Sprintf("provider returned status %d", line.Response.StatusCode)
		default:
			result.Translated = line.Response.Body.Choices[0].Message.Content
			result.PromptTokens = line.Response.Body.Usage.PromptTokens
			result.CompletionTokens = line.Response.Body.Usage.CompletionTokens
		}
		results = append(results, result)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read batch output: %w", err)
	}
	return results, nil
}
