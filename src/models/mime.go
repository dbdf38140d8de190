package models

import (
	"mime"
	"path/filepath"
	"strings"
)

// MIME lookup tables for the attachment types this product handles:
// screenshots and audio clips, plus a few text formats that get inlined.
var (
	mimeExtMap = map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
		".bmp":  "image/bmp",
		".heic": "image/heic",
		".wav":  "audio/wav",
		".mp3":  "audio/mp3",
		".m4a":  "audio/aac",
		".aac":  "audio/aac",
		".ogg":  "audio/ogg",
		".flac": "audio/flac",
		".txt":  "text/plain",
		".md":   "text/markdown",
		".json": "application/json",
	}

	mimeAliasMap = map[string]string{
		"image/jpg":   "image/jpeg",
		"image/pjpeg": "image/jpeg",
		"image/x-png": "image/png",
		"audio/mpeg":  "audio/mp3",
		"audio/x-wav": "audio/wav",
		"audio/mp4":   "audio/aac",
	}
)

// normalizeMIME fixes messy/alias MIMEs and falls back to file extension.
func normalizeMIME(name, m string) string {
	strip := func(s string) string {
		if i := strings.IndexByte(s, ';'); i >= 0 {
			return strings.TrimSpace(s[:i])
		}
		return strings.TrimSpace(s)
	}

	fromExt := func() string {
		ext := strings.ToLower(filepath.Ext(name))
		if ext == "" {
			return ""
		}
		if mt, ok := mimeExtMap[ext]; ok {
			return mt
		}
		if mt := mime.TypeByExtension(ext); mt != "" {
			return strip(mt)
		}
		return ""
	}

	raw := strings.ToLower(strings.TrimSpace(m))
	if raw == "" {
		return fromExt()
	}
	raw = strip(raw)

	// Fix double-prefix artifacts from sloppy callers.
	for strings.HasPrefix(raw, "image/image/") || strings.HasPrefix(raw, "audio/audio/") {
		if strings.HasPrefix(raw, "image/image/") {
			raw = "image/" + strings.TrimPrefix(raw, "image/image/")
		}
		if strings.HasPrefix(raw, "audio/audio/") {
			raw = "audio/" + strings.TrimPrefix(raw, "audio/audio/")
		}
	}

	if normalized, ok := mimeAliasMap[raw]; ok {
		return normalized
	}

	// Malformed MIME, use the extension instead.
	if !strings.Contains(raw, "/") || strings.HasSuffix(raw, "/") {
		if via := fromExt(); via != "" {
			return via
		}
	}
	return raw
}

func isImageMIME(m string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(m)), "image/")
}

func isAudioMIME(m string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(m)), "audio/")
}

func isTextMIME(m string) bool {
	m = strings.ToLower(strings.TrimSpace(m))
	if m == "" {
		return false
	}
	if strings.HasPrefix(m, "text/") {
		return true
	}
	switch m {
	case "application/json", "application/xml", "application/x-yaml":
		return true
	default:
		return false
	}
}

// sanitizeForGemini filters to the attachment MIMEs the Gemini API accepts.
// Returning "" means skip attaching and fall back to text-only.
func sanitizeForGemini(mt string) string {
	mt = strings.ToLower(strings.TrimSpace(mt))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case "image/png", "image/jpeg", "image/webp", "image/gif", "image/heic":
		return mt
	case "image/jpg", "image/pjpeg":
		return "image/jpeg"
	case "audio/wav", "audio/mp3", "audio/aac", "audio/ogg", "audio/flac", "audio/aiff":
		return mt
	case "audio/mpeg":
		return "audio/mp3"
	default:
		return ""
	}
}

// sanitizeForAnthropic filters to the image MIMEs the Messages API accepts.
func sanitizeForAnthropic(mt string) string {
	mt = strings.ToLower(strings.TrimSpace(mt))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return mt
	case "image/jpg":
		return "image/jpeg"
	default:
		return ""
	}
}

// sanitizeForOpenAI filters to the image MIMEs the chat completions API accepts.
func sanitizeForOpenAI(mt string) string {
	mt = strings.ToLower(strings.TrimSpace(mt))
	switch mt {
	case "image/jpeg", "image/jpg":
		return "image/jpeg"
	case "image/png", "image/gif", "image/webp":
		return mt
	default:
		return ""
	}
}
