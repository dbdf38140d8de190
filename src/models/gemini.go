package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ---------------------------- Google Gemini ----------------------------------

// GeminiEngine is the default cloud backend. It accepts text, images and
// audio clips in a single request.
type GeminiEngine struct {
	Client *genai.Client
	Model  string
}

// NewGeminiEngine constructs a Gemini client with the given API key.
func NewGeminiEngine(ctx context.Context, apiKey, model string) (*GeminiEngine, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: missing API key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiEngine{Client: client, Model: model}, nil
}

func (g *GeminiEngine) Name() string { return "gemini" }

func (g *GeminiEngine) Capabilities() Capability {
	return Capability{Images: true, Audio: true}
}

func (g *GeminiEngine) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.Client.GenerativeModel(g.Model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return geminiText(resp)
}

func (g *GeminiEngine) GenerateWithFiles(ctx context.Context, prompt string, files []File) (string, error) {
	var textFiles []File
	parts := make([]genai.Part, 0, len(files)+1)

	for _, f := range files {
		mt := sanitizeForGemini(normalizeMIME(f.Name, f.MIME))
		if mt == "" {
			if isTextMIME(normalizeMIME(f.Name, f.MIME)) {
				textFiles = append(textFiles, f)
			}
			continue
		}
		parts = append(parts, genai.Blob{MIMEType: mt, Data: f.Data})
	}

	fullPrompt := prompt
	if len(textFiles) > 0 {
		fullPrompt = combinePromptWithFiles(prompt, textFiles)
	}
	parts = append([]genai.Part{genai.Text(fullPrompt)}, parts...)

	model := g.Client.GenerativeModel(g.Model)
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return geminiText(resp)
}

// geminiText flattens the first candidate's text parts.
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return b.String(), nil
}

var _ Engine = (*GeminiEngine)(nil)
