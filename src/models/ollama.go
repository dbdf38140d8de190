package models

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// ---------------------------- Ollama -----------------------------------------

// DefaultOllamaHost is where a stock Ollama install listens.
const DefaultOllamaHost = "http://localhost:11434"

// OllamaOptions are the sampling options forwarded on every generate call.
type OllamaOptions struct {
	Temperature float64
	TopP        float64
}

// DefaultOllamaOptions keeps answers focused without going fully greedy.
func DefaultOllamaOptions() OllamaOptions {
	return OllamaOptions{Temperature: 0.7, TopP: 0.9}
}

// OllamaEngine is the local backend. It speaks the Ollama HTTP API:
// POST {endpoint}/api/generate for completions, GET {endpoint}/api/tags for
// the installed model list.
type OllamaEngine struct {
	Client  *ollama.Client
	Model   string
	Options OllamaOptions

	endpoint string
}

// NewOllamaEngine constructs a client against endpoint. An empty endpoint
// falls back to DefaultOllamaHost. Model may be empty; the gateway treats
// that as "no model selected" until one is chosen.
func NewOllamaEngine(endpoint, model string, opts OllamaOptions) (*OllamaEngine, error) {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultOllamaHost
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama endpoint %q: %w", endpoint, err)
	}

	httpClient := &http.Client{
		Timeout: 120 * time.Second,
	}

	return &OllamaEngine{
		Client:   ollama.NewClient(u, httpClient),
		Model:    model,
		Options:  opts,
		endpoint: strings.TrimRight(endpoint, "/"),
	}, nil
}

func (o *OllamaEngine) Name() string { return "ollama" }

// Endpoint returns the configured base URL, for error messages.
func (o *OllamaEngine) Endpoint() string { return o.endpoint }

func (o *OllamaEngine) Capabilities() Capability {
	// The generate endpoint takes base64 images; there is no audio input.
	return Capability{Images: true, Audio: false}
}

func (o *OllamaEngine) Generate(ctx context.Context, prompt string) (string, error) {
	return o.generate(ctx, prompt, nil)
}

func (o *OllamaEngine) GenerateWithFiles(ctx context.Context, prompt string, files []File) (string, error) {
	var textFiles []File
	var images []ollama.ImageData

	for _, f := range files {
		mt := normalizeMIME(f.Name, f.MIME)
		switch {
		case isImageMIME(mt):
			// api.ImageData is raw bytes; the client base64-encodes on marshal.
			images = append(images, ollama.ImageData(f.Data))
		case isTextMIME(mt):
			textFiles = append(textFiles, f)
		}
	}

	if len(textFiles) > 0 {
		prompt = combinePromptWithFiles(prompt, textFiles)
	}
	return o.generate(ctx, prompt, images)
}

func (o *OllamaEngine) generate(ctx context.Context, prompt string, images []ollama.ImageData) (string, error) {
	if strings.TrimSpace(o.Model) == "" {
		return "", fmt.Errorf("ollama: no model selected")
	}

	stream := false
	req := &ollama.GenerateRequest{
		Model:  o.Model,
		Prompt: prompt,
		Stream: &stream,
		Images: images,
		Options: map[string]any{
			"temperature": o.Options.Temperature,
			"top_p":       o.Options.TopP,
		},
	}

	var text strings.Builder
	err := o.Client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		if gr.Response != "" {
			text.WriteString(gr.Response)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate (%s): %w", o.endpoint, err)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("ollama: %w", ErrEmptyResponse)
	}
	return text.String(), nil
}

// ListModels returns the names of installed models via /api/tags.
func (o *OllamaEngine) ListModels(ctx context.Context) ([]string, error) {
	resp, err := o.Client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ollama list (%s): %w", o.endpoint, err)
	}
	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

var (
	_ Engine      = (*OllamaEngine)(nil)
	_ ModelLister = (*OllamaEngine)(nil)
)
