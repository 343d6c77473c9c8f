package convert

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nuskha/nuskha/internal/mdown"
)

var (
	footnoteRe = regexp.MustCompile(`FOOTNOTE.*\n+`)
	sectionRe  = regexp.MustCompile(`### [|$]+ (.*)`)
)

// ExtractFootnotes moves FOOTNOTE lines out of the text into an endnote
// block. Each note is keyed by the last page marker seen before it; when
// no page marker is available the enclosing section title is used, and
// failing that the note is filed under "(no page number)".
func ExtractFootnotes(text string) (body, notes string) {
	var b, n strings.Builder
	pieces := splitKeep(footnoteRe, text)
	for i, piece := range pieces {
		if !strings.HasPrefix(strings.TrimSpace(piece), "FOOTNOTE") {
			b.WriteString(piece)
			continue
		}
		note := strings.TrimSpace(piece)[len("FOOTNOTE"):]
		prev := ""
		if i > 0 {
			prev = pieces[i-1]
		}
		if strings.HasPrefix(strings.TrimSpace(prev), "FOOTNOTE") {
			// consecutive notes share the previous key
			fmt.Fprintf(&n, "%s\n\n", note)
			continue
		}
		if p := mdown.LastPageMarker(prev); p != "" {
			fmt.Fprintf(&n, "%s:\n\n%s\n\n", p, note)
		} else if m := sectionRe.FindAllStringSubmatch(prev, -1); len(m) > 0 {
			fmt.Fprintf(&n, "Notes on section (%s)(no page numbers):\n\n%s\n\n", m[0][1], note)
		} else {
			fmt.Fprintf(&n, "(no page number):\n\n%s\n\n", note)
		}
	}
	return b.String(), n.String()
}

// splitKeep splits s around matches of re, keeping the matches as
// elements of the result. Empty segments are dropped.
func splitKeep(re *regexp.Regexp, s string) []string {
	var out []string
	last := 0
	for _, m := range re.FindAllStringIndex(s, -1) {
		if m[0] > last {
			out = append(out, s[last:m[0]])
		}
		out = append(out, s[m[0]:m[1]])
		last = m[1]
	}
	if last < len(s) {
		out = append(out, s[last:])
	}
	return out
}
