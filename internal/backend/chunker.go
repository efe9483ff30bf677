package backend

import "strings"

// SplitWords breaks text into pieces of approximately width characters without
// splitting words. Every piece except the last carries a trailing space so the
// concatenation of all pieces reconstructs the text with normalized
// whitespace. A single word longer than width becomes its own piece.
func SplitWords(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if width <= 0 {
		width = fallbackChunkWidth
	}

	var pieces []string
	var cur strings.Builder
	for _, word := range words {
		if cur.Len() > 0 && cur.Len()+1+len(word) > width {
			pieces = append(pieces, cur.String()+" ")
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		pieces = append(pieces, cur.String())
	}
	return pieces
}
