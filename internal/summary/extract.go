package summary

import (
	"regexp"
	"strings"
)

// Model responses often wrap the requested JSON in a fenced markdown block.
var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\n(.*?)\n```")

// extractJSON returns the contents of the first fenced code block when one
// is present, otherwise the trimmed full text.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}
