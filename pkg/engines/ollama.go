package engines

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mail_trans_engine/config"
	"mail_trans_engine/pkg/glossary"
	"mail_trans_engine/pkg/httpclient"
)

// Ollama is the local-model backend, talking to an ollama server over HTTP.
type Ollama struct {
	host   string
	model  string
	client httpclient.Controller
}

func NewOllama(cfg config.Ollama, client httpclient.Controller) *Ollama {
	return &Ollama{host: strings.TrimRight(cfg.Host, "/"), model: cfg.Model, client: client}
}

func (o *Ollama) Name() string { return NameOllama }

func (o *Ollama) Available() bool { return o.host != "" && o.model != "" }

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (o *Ollama) Translate(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(ollamaGenerateRequest{
		Model:  o.model,
		Prompt: translationPrompt(req),
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+"/api/generate", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama call: %s, %s", resp.Status, string(bodyBytes))
	}

	var generated ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		return "", fmt.Errorf("ollama response: %w", err)
	}
	if strings.TrimSpace(generated.Response) == "" {
		return "", fmt.Errorf("ollama response: empty result")
	}

	return strings.TrimSpace(generated.Response), nil
}

// translationPrompt builds the instruction shared by the LLM backends.
// Glossary terms become hard substitution requirements in the prompt.
func translationPrompt(req Request) string {
	var b strings.Builder
	if req.SourceLang != "" {
		fmt.Fprintf(&b, "Translate the following text from %s to %s.", req.SourceLang, req.TargetLang)
	} else {
		fmt.Fprintf(&b, "Translate the following text to %s.", req.TargetLang)
	}
	b.WriteString(" Output only the translation, no explanations, keep line breaks.\n")
	writeTermList(&b, req.Terms)
	b.WriteString("\n")
	b.WriteString(req.Text)
	return b.String()
}

func writeTermList(b *strings.Builder, terms []glossary.Term) {
	if len(terms) == 0 {
		return
	}
	b.WriteString("Use these exact term translations:\n")
	for _, t := range terms {
		fmt.Fprintf(b, "- %s => %s\n", t.Source, t.Target)
	}
}
