package mdown

import (
	"regexp"
	"strings"
)

// lines starting with these prefixes are never rewrapped
var reflowIgnorePrefixes = []string{
	"#000000#", "#NewRec#", "#####", "### ", "#META#", "Page",
}

var (
	paragraphSplitRe = regexp.MustCompile(`\n\n+`)
	shortContRe      = regexp.MustCompile(`[\r\n]+~~(.{1,6}?[\r\n]+)`)
)

// Reflow wraps long lines at maxLen characters (DefaultMaxLineLen if
// zero), marking each continuation line with two tildes. Structural
// annotation, metadata lines and page markers keep their original layout,
// and a continuation of six characters or less is folded back onto the
// previous line.
func Reflow(text string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLineLen
	}
	text = strings.ReplaceAll(text, "\r", "\n")

	var b strings.Builder
	for _, part := range splitKeepSeparators(text, paragraphSplitRe) {
		if part == "" || hasIgnorePrefix(part) || strings.Contains(part, "\n\n") {
			b.WriteString(part)
			continue
		}
		sublines := strings.Split(part, "\n")
		for i, s := range sublines {
			sublines[i] = strings.Join(wrapLine(s, maxLen), "\n~~")
		}
		b.WriteString(strings.Join(sublines, "\n"))
	}
	return shortContRe.ReplaceAllString(b.String(), " $1")
}

func hasIgnorePrefix(line string) bool {
	for _, p := range reflowIgnorePrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// splitKeepSeparators splits s around matches of re, keeping the matched
// separators as their own elements.
func splitKeepSeparators(s string, re *regexp.Regexp) []string {
	var parts []string
	last := 0
	for _, loc := range re.FindAllStringIndex(s, -1) {
		parts = append(parts, s[last:loc[0]], s[loc[0]:loc[1]])
		last = loc[1]
	}
	return append(parts, s[last:])
}

// wrapLine greedily breaks s into lines of at most width runes, collapsing
// internal whitespace. An overlong word gets a line of its own.
func wrapLine(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur := words[0]
	curLen := len([]rune(words[0]))
	for _, w := range words[1:] {
		wl := len([]rune(w))
		if curLen+1+wl > width {
			lines = append(lines, cur)
			cur = w
			curLen = wl
			continue
		}
		cur += " " + w
		curLen += 1 + wl
	}
	return append(lines, cur)
}
