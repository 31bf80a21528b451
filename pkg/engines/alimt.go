package engines

import (
	"context"
	"errors"
	"fmt"
	"time"

	alimt20181012 "github.com/alibabacloud-go/alimt-20181012/v2/client"
	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	"github.com/alibabacloud-go/tea/tea"
	util "github.com/alibabacloud-go/tea-utils/v2/service"

	"mail_trans_engine/config"
)

// Alimt is the Alibaba machine-translation backend. It has no glossary
// support, so requested terms are left to the caching layer (they are part
// of the cache key and a glossary tenant simply gets its own entries).
type Alimt struct {
	client *alimt20181012.Client
}

func NewAlimt(cfg config.Aliyun) (*Alimt, error) {
	clientCfg := &openapi.Config{
		AccessKeyId:     &cfg.AccessKeyId,
		AccessKeySecret: &cfg.AccessKeySecret,
	}
	clientCfg.Endpoint = tea.String("mt.aliyuncs.com")

	client, err := alimt20181012.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("new alimt client: %w", err)
	}
	return &Alimt{client: client}, nil
}

func (a *Alimt) Name() string { return NameAlimt }

func (a *Alimt) Available() bool { return a.client != nil }

func (a *Alimt) Translate(ctx context.Context, req Request) (string, error) {
	from := req.SourceLang
	if from == "" {
		detected, err := a.Detect(ctx, req.Text)
		if err == nil && detected != "" {
			from = detected
		} else {
			from = "auto"
		}
	}

	translateReq := &alimt20181012.TranslateGeneralRequest{
		FormatType:     tea.String("text"),
		SourceLanguage: tea.String(from),
		TargetLanguage: tea.String(req.TargetLang),
		SourceText:     tea.String(req.Text),
		Scene:          tea.String("general"),
	}
	runtime := &util.RuntimeOptions{}
	if deadline, ok := ctx.Deadline(); ok {
		ms := int(time.Until(deadline).Milliseconds())
		runtime.ReadTimeout = tea.Int(ms)
		runtime.ConnectTimeout = tea.Int(ms)
	}

	result, err := a.client.TranslateGeneralWithOptions(translateReq, runtime)
	if err != nil {
		return "", fmt.Errorf("alimt translate: %w", err)
	}

	if result.Body == nil || result.Body.Code == nil {
		return "", errors.New("alimt translate: empty response")
	}
	if *result.Body.Code != 200 {
		msg := "unknown error"
		if result.Body.Message != nil {
			msg = *result.Body.Message
		}
		return "", fmt.Errorf("alimt translate: %s", msg)
	}

	return *result.Body.Data.Translated, nil
}

// Detect asks the provider for the source language of text.
func (a *Alimt) Detect(ctx context.Context, text string) (string, error) {
	detectReq := &alimt20181012.GetDetectLanguageRequest{
		SourceText: tea.String(text),
	}

	result, err := a.client.GetDetectLanguageWithOptions(detectReq, &util.RuntimeOptions{})
	if err != nil {
		return "", fmt.Errorf("alimt detect: %w", err)
	}
	if result.StatusCode != nil && *result.StatusCode == 200 && result.Body.DetectedLanguage != nil {
		return *result.Body.DetectedLanguage, nil
	}
	return "", nil
}
