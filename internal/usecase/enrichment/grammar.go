package enrichment

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Utterance is one speaker turn of a transcript
type Utterance struct {
	Speaker int
	Text    string
	Offset  float64 // seconds from meeting start
}

var (
	// (Speaker1)[text](12.5); the offset group is optional and defaults to 0
	tokenPattern = regexp.MustCompile(`\(Speaker(\d+)\)\[([^\]]*)\](?:\((\d+(?:\.\d+)?)\))?`)

	// Speaker1: text(12.5)
	linePattern = regexp.MustCompile(`^\s*Speaker(\d+)\s*[:：]\s*(.*?)\s*\((\d+(?:\.\d+)?)\)\s*$`)

	// any line starting with a speaker marker, e.g. "[Speaker2] text" or "話者2：text"
	looseMarker    = regexp.MustCompile(`^\s*[\[(（]?\s*(?:Speaker|speaker|SPEAKER|話者)\s*(\d+)\s*[\])）]?\s*[:：]?\s*(.*)$`)
	trailingOffset = regexp.MustCompile(`\s*\((\d+(?:\.\d+)?)\)\s*$`)
)

// Parse reads a transcript in the (SpeakerN)[text](offset) notation. When no
// token matches it falls back to "SpeakerN: text(offset)" lines, then to a
// loose line heuristic where unmarked lines continue the previous utterance.
func Parse(text string) []Utterance {
	if out := parseTokens(text); len(out) > 0 {
		return out
	}
	if out := parseLines(text); len(out) > 0 {
		return out
	}
	return parseLoose(text)
}

// Format writes utterances in the token notation, separated by one space
func Format(utterances []Utterance) string {
	tokens := make([]string, 0, len(utterances))
	for _, u := range utterances {
		tokens = append(tokens, fmt.Sprintf("(Speaker%d)[%s](%s)", u.Speaker, u.Text, formatOffset(u.Offset)))
	}
	return strings.Join(tokens, " ")
}

func formatOffset(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseOffset(raw string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseTokens(text string) []Utterance {
	matches := tokenPattern.FindAllStringSubmatch(text, -1)
	out := make([]Utterance, 0, len(matches))
	for _, m := range matches {
		speaker, _ := strconv.Atoi(m[1])
		out = append(out, Utterance{
			Speaker: speaker,
			Text:    m[2],
			Offset:  parseOffset(m[3]),
		})
	}
	return out
}

func parseLines(text string) []Utterance {
	var out []Utterance
	for _, line := range strings.Split(text, "\n") {
		m := linePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		speaker, _ := strconv.Atoi(m[1])
		out = append(out, Utterance{
			Speaker: speaker,
			Text:    m[2],
			Offset:  parseOffset(m[3]),
		})
	}
	return out
}

func parseLoose(text string) []Utterance {
	var (
		out     []Utterance
		current *Utterance
	)
	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.TrimSpace(current.Text)
		if m := trailingOffset.FindStringSubmatch(current.Text); m != nil {
			current.Offset = parseOffset(m[1])
			current.Text = strings.TrimSpace(trailingOffset.ReplaceAllString(current.Text, ""))
		}
		if current.Text != "" {
			out = append(out, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if m := looseMarker.FindStringSubmatch(line); m != nil {
			flush()
			speaker, _ := strconv.Atoi(m[1])
			current = &Utterance{Speaker: speaker, Text: m[2]}
			continue
		}
		trimmed := strings.TrimSpace(line)
		if current == nil || trimmed == "" {
			continue
		}
		current.Text = joinContinuation(current.Text, trimmed)
	}
	flush()
	return out
}

// joinContinuation appends a continuation line, keeping a space between
// ASCII words
func joinContinuation(head, tail string) string {
	if head == "" {
		return tail
	}
	if isASCIIAlnum(head[len(head)-1]) && isASCIIAlnum(tail[0]) {
		return head + " " + tail
	}
	return head + tail
}

func isASCIIAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
