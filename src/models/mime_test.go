package models

import (
	"regexp"
	"testing"
)

func TestNormalizeMIME(t *testing.T) {
	cases := []struct {
		name string
		file string
		mime string
		want string
	}{
		{"empty everything", "noext", "", ""},
		{"from extension", "clip.wav", "", "audio/wav"},
		{"alias jpeg", "photo", "image/jpg", "image/jpeg"},
		{"alias mpeg audio", "clip", "audio/mpeg", "audio/mp3"},
		{"double prefix", "shot.png", "image/image/png", "image/png"},
		{"with params", "shot.png", "image/png; charset=binary", "image/png"},
		{"invalid without slash", "recording.mp3", "audio", "audio/mp3"},
		{"suffix slash", "notes.txt", "text/plain/", "text/plain"},
		{"already clean", "data.bin", "application/octet-stream", "application/octet-stream"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeMIME(tc.file, tc.mime); got != tc.want {
				t.Fatalf("normalizeMIME(%q, %q) = %q, want %q", tc.file, tc.mime, got, tc.want)
			}
		})
	}
}

func TestSanitizeForGemini(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"basic png", "image/png", "image/png"},
		{"png with params", "image/png; charset=binary", "image/png"},
		{"jpeg alias", "image/jpg", "image/jpeg"},
		{"wav", "audio/wav", "audio/wav"},
		{"mpeg audio alias", "audio/mpeg", "audio/mp3"},
		{"unsupported", "application/pdf", ""},
		{"video unsupported", "video/mp4", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizeForGemini(tc.input); got != tc.want {
				t.Fatalf("sanitizeForGemini(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSanitizeForAnthropic(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"basic jpeg", "image/jpeg", "image/jpeg"},
		{"jpeg alias", "image/jpg", "image/jpeg"},
		{"with params", "image/png; something", "image/png"},
		{"audio unsupported", "audio/wav", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizeForAnthropic(tc.input); got != tc.want {
				t.Fatalf("sanitizeForAnthropic(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSanitizeForOpenAI(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"image/jpeg", "image/jpeg"},
		{"image/jpg", "image/jpeg"},
		{"image/png", "image/png"},
		{"image/bmp", ""},
		{"audio/wav", ""},
	}

	for _, tc := range cases {
		if got := sanitizeForOpenAI(tc.input); got != tc.want {
			t.Fatalf("sanitizeForOpenAI(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestMIMEClassifiers(t *testing.T) {
	if !isImageMIME("image/png") || isImageMIME("audio/wav") {
		t.Fatal("isImageMIME misclassified")
	}
	if !isAudioMIME(" audio/mp3 ") || isAudioMIME("image/png") {
		t.Fatal("isAudioMIME misclassified")
	}
	if !isTextMIME("text/plain") || !isTextMIME(" application/json ") || isTextMIME("image/png") || isTextMIME("") {
		t.Fatal("isTextMIME misclassified")
	}
}

func TestCombinePromptWithFiles(t *testing.T) {
	if got, want := combinePromptWithFiles("only base", nil), "only base"; got != want {
		t.Fatalf("combinePromptWithFiles without files = %q, want %q", got, want)
	}

	base := "Answer this"
	files := []File{
		{Name: "", MIME: "text/plain", Data: []byte("hello")},
		{Name: "shot.png", MIME: "image/png", Data: []byte{0x00, 0x01}},
	}
	combined := combinePromptWithFiles(base, files)

	for _, pattern := range []string{
		regexp.QuoteMeta(base),
		"ATTACHED CONTEXT",
		`<<<FILE file_1 \[text/plain\]>>>`,
		regexp.QuoteMeta("[Binary attachment] shot.png (image/png)"),
	} {
		if !regexp.MustCompile(pattern).MatchString(combined) {
			t.Fatalf("combined output missing %q:\n%s", pattern, combined)
		}
	}
}
