package text

import (
	"strings"
)

// DefaultMaxChars is the window size used when the caller passes a
// non-positive limit.
const DefaultMaxChars = 2000

// Normalize converts carriage returns to newlines, trims every line and
// drops blank lines, rejoining the rest with a single newline. This is the
// canonical form all chunk boundaries are computed against.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// Chunk splits text into segments of at most maxChars characters. Windows
// that are not the final one are pulled back to the last ". " sentence
// terminator inside the window when one exists, so sentences are only split
// when a window contains no terminator at all. Empty segments after trimming
// are discarded. Input shorter than maxChars yields a single chunk; input
// with no terminators degrades to fixed-width slicing.
func Chunk(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	text = Normalize(text)

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + maxChars
		if end > len(text) {
			end = len(text)
		}

		// Cut at the last sentence boundary within the window, unless this
		// is already the final chunk.
		window := text[start:end]
		if lastDot := strings.LastIndex(window, ". "); lastDot != -1 && end < len(text) {
			end = start + lastDot + 1
		}

		chunk := strings.TrimSpace(text[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		start = end
	}
	return chunks
}
