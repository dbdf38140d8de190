package models

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

// ---------------------------- Anthropic ---------------------------------------

// AnthropicEngine is an alternative cloud backend using the Messages API.
// Images are supported as base64 blocks; audio input is not.
type AnthropicEngine struct {
	Client    *anthropic.Client
	Model     string
	MaxTokens int
}

func NewAnthropicEngine(apiKey, model string) (*AnthropicEngine, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("anthropic: missing API key")
	}
	cl := anthropic.NewClient(
		anthropicopt.WithAPIKey(apiKey),
	)
	return &AnthropicEngine{
		Client:    &cl,
		Model:     model,
		MaxTokens: 1024,
	}, nil
}

func (a *AnthropicEngine) Name() string { return "anthropic" }

func (a *AnthropicEngine) Capabilities() Capability {
	return Capability{Images: true, Audio: false}
}

func (a *AnthropicEngine) Generate(ctx context.Context, prompt string) (string, error) {
	return a.send(ctx, []anthropic.ContentBlockParamUnion{
		anthropic.NewTextBlock(prompt),
	})
}

func (a *AnthropicEngine) GenerateWithFiles(ctx context.Context, prompt string, files []File) (string, error) {
	var textFiles []File
	var blocks []anthropic.ContentBlockParamUnion

	for _, f := range files {
		mt := sanitizeForAnthropic(normalizeMIME(f.Name, f.MIME))
		if mt == "" {
			if isTextMIME(normalizeMIME(f.Name, f.MIME)) {
				textFiles = append(textFiles, f)
			}
			continue
		}
		encoded := base64.StdEncoding.EncodeToString(f.Data)
		blocks = append(blocks, anthropic.NewImageBlockBase64(mt, encoded))
	}

	fullPrompt := prompt
	if len(textFiles) > 0 {
		fullPrompt = combinePromptWithFiles(prompt, textFiles)
	}
	blocks = append([]anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(fullPrompt)}, blocks...)

	return a.send(ctx, blocks)
}

func (a *AnthropicEngine) send(ctx context.Context, blocks []anthropic.ContentBlockParamUnion) (string, error) {
	msg, err := a.Client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.Model),
		MaxTokens: int64(a.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic generate: %w", err)
	}

	var b strings.Builder
	for _, cb := range msg.Content {
		if tb, ok := cb.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("anthropic: %w", ErrEmptyResponse)
	}
	return b.String(), nil
}

var _ Engine = (*AnthropicEngine)(nil)
