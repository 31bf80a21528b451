package textsplit

import (
	"strings"
	"unicode/utf8"
)

// Chunk splits text into ordered pieces of at most maxSize characters.
// Sizes are measured in runes, matching how usage is accounted, so CJK
// text gets the same effective budget as ASCII. The cut point is searched
// backward from the size boundary in priority order: paragraph break, line
// break, sentence-ending punctuation, clause punctuation, plain
// whitespace. Pieces reassemble with a plain strings.Join(chunks, "") and
// no characters are lost. Only when no boundary exists in the window does
// a hard cut happen, at the window end, which is a rune boundary by
// construction.
func Chunk(text string, maxSize int) []string {
	if maxSize <= 0 {
		return []string{text}
	}
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= maxSize {
		return []string{text}
	}

	var chunks []string
	rest := text
	for {
		end := byteWindow(rest, maxSize)
		if end >= len(rest) {
			chunks = append(chunks, rest)
			break
		}
		cut := findCut(rest[:end])
		chunks = append(chunks, rest[:cut])
		rest = rest[cut:]
	}
	return chunks
}

// byteWindow returns the byte length of the first maxRunes runes of s.
func byteWindow(s string, maxRunes int) int {
	count := 0
	for i := range s {
		if count == maxRunes {
			return i
		}
		count++
	}
	return len(s)
}

// findCut picks the best split point within the window, always > 0 so the
// loop makes progress.
func findCut(window string) int {
	// Cut after the boundary so the separator stays with the left piece.
	if idx := strings.LastIndex(window, "\n\n"); idx > 0 {
		return idx + 2
	}
	if idx := strings.LastIndex(window, "\n"); idx > 0 {
		return idx + 1
	}
	if idx := lastBoundary(window, ".!?"); idx > 0 {
		return idx
	}
	if idx := lastBoundary(window, ",;:"); idx > 0 {
		return idx
	}
	if idx := strings.LastIndexAny(window, " \t"); idx > 0 {
		return idx + 1
	}

	// One unsplittable token longer than the window: hard cut at its end.
	return len(window)
}

// lastBoundary returns the position just after the last rune from chars that
// is followed by whitespace (or the window end), so "3.5" is not treated as
// a sentence end.
func lastBoundary(window string, chars string) int {
	for i := len(window) - 1; i > 0; i-- {
		if !strings.ContainsRune(chars, rune(window[i])) {
			continue
		}
		if i == len(window)-1 {
			return i + 1
		}
		next := window[i+1]
		if next == ' ' || next == '\t' || next == '\n' {
			return i + 1
		}
	}
	return -1
}
