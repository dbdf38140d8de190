package models

import (
	"context"
	"errors"
)

// File is a lightweight in-memory attachment.
// Name is used for display and extension-based MIME fallback; MIME should be
// best-effort (e.g., "image/png", "audio/wav").
type File struct {
	Name string
	MIME string
	Data []byte
}

// Capability describes which attachment modalities an engine accepts.
type Capability struct {
	Images bool
	Audio  bool
}

// Engine is a single generation backend. Generate and GenerateWithFiles block
// until the backend answers or ctx is done; they return the generated text.
type Engine interface {
	// Name identifies the backend in errors and logs ("gemini", "ollama", ...).
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateWithFiles(ctx context.Context, prompt string, files []File) (string, error)
	Capabilities() Capability
}

// ModelLister is implemented by engines that can enumerate installed models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// ErrEmptyResponse indicates the backend answered but produced no usable text.
var ErrEmptyResponse = errors.New("model returned no usable text")
