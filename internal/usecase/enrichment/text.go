package enrichment

import (
	"strings"
	"unicode/utf8"
)

const (
	// fillerMaxRunes is the exclusive upper bound on the length of a filler line
	fillerMaxRunes = 10

	period = "。"

	sentencePunct = "。、！？!?.,，．…"
)

// stripEnclosing removes full-width parentheses wrapping the whole text
func stripEnclosing(text string) string {
	s := strings.TrimSpace(text)
	for strings.HasPrefix(s, "（") && strings.HasSuffix(s, "）") && len(s) >= len("（）") {
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s, "（"), "）"))
	}
	return s
}

// isFiller reports whether text is a short backchannel line
func isFiller(text string) bool {
	return utf8.RuneCountInString(stripEnclosing(text)) < fillerMaxRunes
}

// trimPunct strips sentence punctuation from both ends
func trimPunct(text string) string {
	return strings.Trim(strings.TrimSpace(text), sentencePunct+" \t　")
}

// splitSentences splits on the full-width period and drops blank pieces.
// The returned sentences carry no period.
func splitSentences(text string) []string {
	parts := strings.Split(text, period)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// truncateRunes cuts s to at most n characters
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
