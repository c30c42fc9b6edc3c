package text

import (
	"regexp"
	"strings"

	"github.com/rivo/uniseg"
)

var breakTag = regexp.MustCompile(`(?i)<br\s*/?>`)

// Lines splits a label on explicit line breaks: newlines and <br> tags in
// any of their common spellings. An empty label is a single empty line.
func Lines(label string) []string {
	label = breakTag.ReplaceAllString(label, "\n")
	label = strings.ReplaceAll(label, "\r\n", "\n")
	return strings.Split(label, "\n")
}

// Wrap breaks a single line so no piece is wider than maxWidth, splitting
// only at Unicode line break opportunities. A segment that is wider than
// maxWidth on its own is kept whole. A non-positive maxWidth disables
// wrapping.
func Wrap(line string, maxWidth float64, width func(string) float64) []string {
	if maxWidth <= 0 || width(line) <= maxWidth {
		return []string{line}
	}

	var (
		out   []string
		cur   string
		state = -1
		rest  = line
	)
	for len(rest) > 0 {
		var seg string
		seg, rest, _, state = uniseg.FirstLineSegmentInString(rest, state)
		if cur != "" && width(strings.TrimRight(cur+seg, " ")) > maxWidth {
			out = append(out, strings.TrimRight(cur, " "))
			cur = seg
			continue
		}
		cur += seg
	}
	if cur != "" {
		out = append(out, strings.TrimRight(cur, " "))
	}
	return out
}

// Block measures a label as a stack of lines. It returns the lines after
// explicit and soft breaks and the width of the widest one.
func Block(m Measurer, label string, size float64, weight int, wrapWidth float64) ([]string, float64) {
	measure := func(s string) float64 { return m.Width(s, size, weight) }

	var lines []string
	for _, l := range Lines(label) {
		lines = append(lines, Wrap(l, wrapWidth, measure)...)
	}

	var widest float64
	for _, l := range lines {
		if w := measure(l); w > widest {
			widest = w
		}
	}
	return lines, widest
}
