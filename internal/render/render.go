// Package render formats the answer and its context documents for the
// terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/kailas-cloud/ragquery/internal/domain"
)

// Fill word-wraps text to the given width, collapsing runs of
// whitespace and breaking on word boundaries. A word longer than the
// width stays whole on its own line.
func Fill(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			b.WriteString(line)
			b.WriteByte('\n')
			line = word
			continue
		}
		line += " " + word
	}
	b.WriteString(line)
	return b.String()
}

// Report writes the wrapped answer followed by a numbered listing of
// every document used as context.
func Report(w io.Writer, answer string, docs []domain.Document, width int) {
	fmt.Fprintln(w, Fill(answer, width))
	fmt.Fprintln(w, "\n\nContext used:")

	for i, doc := range docs {
		fmt.Fprintf(w, "DOCUMENT #%d: \n%s\n\n\n", i+1, doc.Content)
	}
}
