package prompt

import (
	"strings"
	"testing"
)

func TestQuestionContainsPersonaAndDetails(t *testing.T) {
	b := NewBuilder("")

	p := b.Question("What is a REST API?", map[string]any{"role": "Backend", "company": "Acme"})

	if !strings.Contains(p, DefaultPersona) {
		t.Fatal("prompt missing default persona preamble")
	}
	if !strings.Contains(p, "What is a REST API?") {
		t.Fatal("prompt missing the question")
	}
	if !strings.Contains(p, `{"company":"Acme","role":"Backend"}`) {
		t.Fatalf("prompt missing serialized details:\n%s", p)
	}
}

func TestCustomPersona(t *testing.T) {
	b := NewBuilder("Answer like a pirate.")
	p := b.Question("hi", nil)
	if !strings.HasPrefix(p, "Answer like a pirate.") {
		t.Fatalf("prompt does not start with custom persona:\n%s", p)
	}
	if strings.Contains(p, "Context (JSON)") {
		t.Fatal("empty details should not add a context section")
	}
}

func TestScreenshotsDefaultTask(t *testing.T) {
	b := NewBuilder("")
	p := b.Screenshots("", nil)
	if !strings.Contains(p, "screenshots") {
		t.Fatalf("default screenshot task missing:\n%s", p)
	}

	custom := b.Screenshots("Explain the diagram.", nil)
	if !strings.Contains(custom, "Explain the diagram.") {
		t.Fatal("custom task not used")
	}
}

func TestAudioTask(t *testing.T) {
	b := NewBuilder("")
	p := b.Audio("", nil)
	if !strings.Contains(p, "audio clip") {
		t.Fatalf("default audio task missing:\n%s", p)
	}

	custom := b.Audio("Summarize the call.", nil)
	if !strings.Contains(custom, "Summarize the call.") {
		t.Fatal("custom task not used")
	}
	if strings.Contains(custom, "do not describe the recording") {
		t.Fatal("default task leaked into custom prompt")
	}
}

func TestMarshalDetailsDeterministic(t *testing.T) {
	details := map[string]any{
		"zeta":  1,
		"alpha": "x",
		"mid":   map[string]any{"b": 2, "a": 1},
	}

	first := MarshalDetails(details)
	for i := 0; i < 20; i++ {
		if got := MarshalDetails(details); got != first {
			t.Fatalf("serialization varies: %q vs %q", first, got)
		}
	}
	if want := `{"alpha":"x","mid":{"a":1,"b":2},"zeta":1}`; first != want {
		t.Fatalf("MarshalDetails = %q, want %q", first, want)
	}

	if MarshalDetails(nil) != "{}" {
		t.Fatal("nil details should serialize to {}")
	}
}
