package retrieval

import (
	"strings"

	"github.com/ziadkadry99/flinsight/internal/regulation"
)

// ContextHeader opens every assembled context block.
const ContextHeader = "Relevant FAA Part 135 regulations:\n\n"

// FormatContext renders records in order into a prompt context block.
// The output depends only on the input sequence.
func FormatContext(records []regulation.Record) string {
	var sb strings.Builder
	sb.WriteString(ContextHeader)
	for _, r := range records {
		sb.WriteString("Section ")
		sb.WriteString(r.ID)
		sb.WriteString(", ")
		sb.WriteString(r.Title)
		sb.WriteString(":\n")
		sb.WriteString(r.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
