package models

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ---------------------------- OpenAI ------------------------------------------

// OpenAIEngine is an alternative cloud backend. Images are supported through
// data-URL content parts; audio input is not.
type OpenAIEngine struct {
	Client *openai.Client
	Model  string
}

func NewOpenAIEngine(apiKey, model string) (*OpenAIEngine, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai: missing API key")
	}
	return &OpenAIEngine{Client: openai.NewClient(apiKey), Model: model}, nil
}

func (o *OpenAIEngine) Name() string { return "openai" }

func (o *OpenAIEngine) Capabilities() Capability {
	return Capability{Images: true, Audio: false}
}

func (o *OpenAIEngine) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.Model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai: %w", ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIEngine) GenerateWithFiles(ctx context.Context, prompt string, files []File) (string, error) {
	var textFiles, imageFiles []File
	for _, f := range files {
		mt := normalizeMIME(f.Name, f.MIME)
		switch {
		case isImageMIME(mt) && sanitizeForOpenAI(mt) != "":
			imageFiles = append(imageFiles, f)
		case isTextMIME(mt):
			textFiles = append(textFiles, f)
		}
	}

	fullPrompt := prompt
	if len(textFiles) > 0 {
		fullPrompt = combinePromptWithFiles(prompt, textFiles)
	}
	if len(imageFiles) == 0 {
		return o.Generate(ctx, fullPrompt)
	}

	parts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: fullPrompt,
	}}
	for _, f := range imageFiles {
		mt := sanitizeForOpenAI(normalizeMIME(f.Name, f.MIME))
		encoded := base64.StdEncoding.EncodeToString(f.Data)
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:%s;base64,%s", mt, encoded),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.Model,
		Messages: []openai.ChatCompletionMessage{{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: parts,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai: %w", ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

var _ Engine = (*OpenAIEngine)(nil)
