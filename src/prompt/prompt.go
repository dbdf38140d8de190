// Package prompt assembles the text sent to a backend: a fixed persona
// preamble, task-specific instructions, and a deterministically serialized
// problem-description payload.
package prompt

import (
	"encoding/json"
	"strings"
)

// DefaultPersona is the spoken-answer style preamble. The output contract is
// plain spoken text, never a structured document.
const DefaultPersona = "You are helping me answer interview questions. " +
	"Reply in the first person, as if I were speaking the answer aloud. " +
	"Keep it short, conversational, and confident. " +
	"Plain text only: no markdown, no headings, no bullet points."

// Builder assembles prompts around a persona preamble.
type Builder struct {
	Persona string
}

// NewBuilder returns a Builder; an empty persona falls back to DefaultPersona.
func NewBuilder(persona string) *Builder {
	if strings.TrimSpace(persona) == "" {
		persona = DefaultPersona
	}
	return &Builder{Persona: persona}
}

// Question builds the prompt for a plain text question. details is the opaque
// problem-description payload supplied by the capture layer; it is serialized
// verbatim as JSON (object keys are emitted in lexicographic order, so the
// serialization is deterministic).
func (b *Builder) Question(question string, details map[string]any) string {
	var sb strings.Builder
	sb.WriteString(b.Persona)
	sb.WriteString("\n\nQuestion:\n")
	sb.WriteString(strings.TrimSpace(question))
	writeDetails(&sb, details)
	return sb.String()
}

// Screenshots builds the instruction text accompanying a set of screenshot
// attachments.
func (b *Builder) Screenshots(task string, details map[string]any) string {
	if strings.TrimSpace(task) == "" {
		task = "Look at the attached screenshots and solve the problem they show. " +
			"Walk me through the answer the way I would explain it out loud."
	}
	var sb strings.Builder
	sb.WriteString(b.Persona)
	sb.WriteString("\n\nTask:\n")
	sb.WriteString(strings.TrimSpace(task))
	writeDetails(&sb, details)
	return sb.String()
}

// Audio builds the instruction text accompanying a recorded question. An
// empty task falls back to the default listen-and-answer instruction.
func (b *Builder) Audio(task string, details map[string]any) string {
	if strings.TrimSpace(task) == "" {
		task = "Listen to the attached audio clip. " +
			"It contains an interview question. Answer that question directly; " +
			"do not describe the recording itself."
	}
	var sb strings.Builder
	sb.WriteString(b.Persona)
	sb.WriteString("\n\nTask:\n")
	sb.WriteString(strings.TrimSpace(task))
	writeDetails(&sb, details)
	return sb.String()
}

func writeDetails(sb *strings.Builder, details map[string]any) {
	if len(details) == 0 {
		return
	}
	sb.WriteString("\n\nContext (JSON):\n")
	sb.WriteString(MarshalDetails(details))
}

// MarshalDetails serializes the problem-description payload. encoding/json
// sorts map keys, which keeps the output stable for identical input.
func MarshalDetails(details map[string]any) string {
	if len(details) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
