package render

import (
	"bytes"
	"encoding/xml"
	"strings"
	"unicode/utf8"
)

const (
	fontCharWidth = 0.55
	fontSizeMin   = 6.0
)

// EscapeXML escapes s for use in SVG text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// MaxChars estimates how many characters of the given font size fit into
// width.
func MaxChars(width, fontSize float64) int {
	return max(3, int(width/(max(fontSize, fontSizeMin)*fontCharWidth)))
}

// Truncate shortens s to at most n runes, ending in "..." when cut.
func Truncate(s string, n int) (string, bool) {
	if utf8.RuneCountInString(s) <= n {
		return s, false
	}
	r := []rune(s)
	cut := strings.TrimRight(string(r[:max(1, n-3)]), " .,")
	return cut + "...", true
}

// Wrap splits s into at most maxLines lines of at most width runes, breaking
// on spaces. Lines that still do not fit are truncated. It
// reports whether anything was cut.
func Wrap(s string, width, maxLines int) ([]string, bool) {
	words := strings.Fields(s)
	var (
		lines []string
		cur   string
	)
	for i, w := range words {
		next := w
		if cur != "" {
			next = cur + " " + w
		}
		if utf8.RuneCountInString(next) <= width {
			cur = next
			continue
		}
		if cur != "" {
			if len(lines) == maxLines-1 {
				cur = strings.Join(append([]string{cur}, words[i:]...), " ")
				break
			}
			lines = append(lines, cur)
		}
		cur = w
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	if len(lines) == 0 {
		return nil, false
	}
	cut := false
	for i, l := range lines {
		var c bool
		lines[i], c = Truncate(l, width)
		cut = cut || c
	}
	return lines, cut
}
