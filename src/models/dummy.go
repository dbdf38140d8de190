package models

import (
	"context"
	"fmt"
	"strings"
)

// DummyEngine is a deterministic offline engine for tests and dry runs.
type DummyEngine struct {
	Prefix string
}

func NewDummyEngine(prefix string) *DummyEngine {
	if strings.TrimSpace(prefix) == "" {
		prefix = "Dummy answer:"
	}
	return &DummyEngine{Prefix: prefix}
}

func (d *DummyEngine) Name() string { return "dummy" }

func (d *DummyEngine) Capabilities() Capability {
	return Capability{Images: true, Audio: true}
}

// Generate echoes the last non-empty prompt line behind the prefix.
func (d *DummyEngine) Generate(_ context.Context, prompt string) (string, error) {
	lines := strings.Split(prompt, "\n")
	var last string
	for i := len(lines) - 1; i >= 0; i-- {
		candidate := strings.TrimSpace(lines[i])
		if candidate != "" {
			last = candidate
			break
		}
	}
	if last == "" {
		last = "<empty prompt>"
	}
	return fmt.Sprintf("%s %s", d.Prefix, last), nil
}

func (d *DummyEngine) GenerateWithFiles(_ context.Context, prompt string, files []File) (string, error) {
	return fmt.Sprintf("%s %s (+%d attachments)", d.Prefix, prompt, len(files)), nil
}

var _ Engine = (*DummyEngine)(nil)
