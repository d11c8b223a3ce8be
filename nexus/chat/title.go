package chat

import (
	"strings"
	"unicode"
)

const titleMaxWords = 6

// Summarize derives a short session label from the first real user
// message: collapse whitespace, keep at most six words, strip trailing
// punctuation, capitalize, and mark truncation with an ellipsis.
// Empty input yields the mode's generic label.
func Summarize(text string, mode Mode) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return mode.GenericTitle()
	}
	title := strings.Join(words[:min(len(words), titleMaxWords)], " ")
	title = strings.TrimRight(title, "?!.:,;")
	if title == "" {
		return mode.GenericTitle()
	}
	runes := []rune(title)
	runes[0] = unicode.ToUpper(runes[0])
	title = string(runes)
	if len(words) > titleMaxWords {
		title += "…"
	}
	return title
}
