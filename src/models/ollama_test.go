package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeOllama is a minimal stand-in for the local inference server, covering
// the two endpoints the engine uses: /api/generate and /api/tags.
func fakeOllama(t *testing.T, installed []string, answer string, lastReq *map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		type tag struct {
			Name string `json:"name"`
		}
		tags := make([]tag, 0, len(installed))
		for _, name := range installed {
			tags = append(tags, tag{Name: name})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"models": tags})
	})

	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if lastReq != nil {
			*lastReq = body
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":    body["model"],
			"response": answer,
			"done":     true,
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestOllamaGenerateWireFormat(t *testing.T) {
	var lastReq map[string]any
	srv := fakeOllama(t, []string{"llama3.2"}, "hi there", &lastReq)

	engine, err := NewOllamaEngine(srv.URL, "llama3.2", DefaultOllamaOptions())
	if err != nil {
		t.Fatalf("NewOllamaEngine: %v", err)
	}

	text, err := engine.Generate(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "hi there" {
		t.Fatalf("Generate text = %q, want %q", text, "hi there")
	}

	if got := lastReq["model"]; got != "llama3.2" {
		t.Fatalf("request model = %v, want llama3.2", got)
	}
	if got := lastReq["prompt"]; got != "Hello" {
		t.Fatalf("request prompt = %v, want Hello", got)
	}
	if got, ok := lastReq["stream"].(bool); !ok || got {
		t.Fatalf("request stream = %v, want false", lastReq["stream"])
	}
	opts, ok := lastReq["options"].(map[string]any)
	if !ok {
		t.Fatalf("request options missing: %v", lastReq)
	}
	if opts["temperature"] != 0.7 || opts["top_p"] != 0.9 {
		t.Fatalf("request options = %v, want temperature 0.7 top_p 0.9", opts)
	}
}

func TestOllamaGenerateWithImages(t *testing.T) {
	var lastReq map[string]any
	srv := fakeOllama(t, nil, "a binary tree", &lastReq)

	engine, err := NewOllamaEngine(srv.URL, "llama3.2", DefaultOllamaOptions())
	if err != nil {
		t.Fatalf("NewOllamaEngine: %v", err)
	}

	files := []File{{Name: "shot.png", MIME: "image/png", Data: []byte{0x89, 0x50}}}
	text, err := engine.GenerateWithFiles(context.Background(), "What does this show?", files)
	if err != nil {
		t.Fatalf("GenerateWithFiles: %v", err)
	}
	if text == "" {
		t.Fatal("GenerateWithFiles returned empty text")
	}

	images, ok := lastReq["images"].([]any)
	if !ok || len(images) != 1 {
		t.Fatalf("request images = %v, want one entry", lastReq["images"])
	}
}

func TestOllamaListModels(t *testing.T) {
	srv := fakeOllama(t, []string{"llama3.2", "mistral"}, "", nil)

	engine, err := NewOllamaEngine(srv.URL, "", DefaultOllamaOptions())
	if err != nil {
		t.Fatalf("NewOllamaEngine: %v", err)
	}

	names, err := engine.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(names) != 2 || names[0] != "llama3.2" || names[1] != "mistral" {
		t.Fatalf("ListModels = %v, want [llama3.2 mistral]", names)
	}
}

func TestOllamaNoModelSelected(t *testing.T) {
	srv := fakeOllama(t, nil, "unused", nil)

	engine, err := NewOllamaEngine(srv.URL, "", DefaultOllamaOptions())
	if err != nil {
		t.Fatalf("NewOllamaEngine: %v", err)
	}
	if _, err := engine.Generate(context.Background(), "Hello"); err == nil {
		t.Fatal("Generate without a model should fail")
	}
}

func TestOllamaEmptyResponse(t *testing.T) {
	srv := fakeOllama(t, nil, "", nil)

	engine, err := NewOllamaEngine(srv.URL, "llama3.2", DefaultOllamaOptions())
	if err != nil {
		t.Fatalf("NewOllamaEngine: %v", err)
	}
	_, err = engine.Generate(context.Background(), "Hello")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("Generate error = %v, want ErrEmptyResponse", err)
	}
}

func TestOllamaInvalidEndpoint(t *testing.T) {
	if _, err := NewOllamaEngine("http://bad host:1", "m", DefaultOllamaOptions()); err == nil {
		t.Fatal("expected error for malformed endpoint")
	}
}

func TestOllamaErrorMentionsEndpoint(t *testing.T) {
	// Closed port: the connection fails and the error must name the endpoint.
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	engine, err := NewOllamaEngine(endpoint, "llama3.2", DefaultOllamaOptions())
	if err != nil {
		t.Fatalf("NewOllamaEngine: %v", err)
	}
	_, err = engine.Generate(context.Background(), "Hello")
	if err == nil {
		t.Fatal("Generate against a closed server should fail")
	}
	if want := fmt.Sprintf("(%s)", endpoint); !strings.Contains(err.Error(), want) {
		t.Fatalf("error %q does not mention endpoint %q", err, endpoint)
	}
}
