package models

import (
	"fmt"
	"strings"
)

// combinePromptWithFiles inlines text attachments into the prompt body.
// Binary attachments are listed by name only; the provider path attaches them.
func combinePromptWithFiles(base string, files []File) string {
	if len(files) == 0 {
		return base
	}

	var b strings.Builder
	b.Grow(len(base) + 256)

	b.WriteString(base)
	b.WriteString("\n\n---\nATTACHED CONTEXT — BEGIN\n")

	for i, f := range files {
		title := strings.TrimSpace(f.Name)
		if title == "" {
			title = fmt.Sprintf("file_%d", i+1)
		}
		mt := normalizeMIME(f.Name, f.MIME)

		if isTextMIME(mt) && len(f.Data) > 0 {
			b.WriteString("\n<<<FILE ")
			b.WriteString(title)
			if mt != "" {
				b.WriteString(" [")
				b.WriteString(mt)
				b.WriteString("]")
			}
			b.WriteString(">>>:\n")
			b.Write(f.Data)
			b.WriteString("\n<<<END FILE ")
			b.WriteString(title)
			b.WriteString(">>>\n")
		} else {
			b.WriteString("\n[Binary attachment] ")
			b.WriteString(title)
			if mt != "" {
				b.WriteString(" (")
				b.WriteString(mt)
				b.WriteString(")")
			}
		}
	}

	b.WriteString("\nATTACHED CONTEXT — END\n---\n")
	return b.String()
}
