package yml

import (
	"sort"
	"strings"
)

// DefaultMaxLength is the column at which serialized values wrap.
const DefaultMaxLength = 80

// SerializeOptions controls output layout.
type SerializeOptions struct {
	// MaxLength is the wrap column; zero means DefaultMaxLength.
	MaxLength int
	// Reflow re-wraps each value line at MaxLength. Keys containing
	// "#URI#" are never reflowed regardless.
	Reflow bool
	// BreakLongWords splits words longer than MaxLength across lines.
	BreakLongWords bool
}

// Serialize renders a record as dialect text. Fields are sorted by key,
// continuation lines are indented four spaces, and pilcrows in values turn
// back into line breaks.
func Serialize(rec Record, opts SerializeOptions) string {
	maxLen := opts.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}

	entries := make([]string, 0, len(rec))
	for _, f := range rec {
		key := strings.TrimSpace(f.Key)
		val := strings.TrimSpace(f.Value)
		var entry string
		if strings.HasSuffix(key, ":") {
			entry = key + " " + val
		} else {
			entry = key + ": " + val
		}

		// URIs must survive byte for byte, so their lines never rewrap.
		if !strings.Contains(entry, "#URI#") {
			lines := strings.Split(entry, Pilcrow)
			for i := 1; i < len(lines); i++ {
				if !strings.HasPrefix(lines[i], " ") && !strings.HasPrefix(lines[i], "\t") {
					lines[i] = "    " + lines[i]
				}
			}
			if opts.Reflow {
				for i, line := range lines {
					lines[i] = strings.Join(wrap(strings.TrimSpace(line), maxLen, opts.BreakLongWords), "\n    ")
				}
			}
			entry = strings.Join(lines, "\n    ")
		}
		entries = append(entries, strings.TrimRight(entry, " "))
	}

	sort.Strings(entries)
	return strings.Join(entries, "\n")
}

// wrap greedily breaks s into lines of at most width runes. Internal
// whitespace collapses to single spaces. A word longer than width gets a
// line of its own unless breakLong is set, in which case it is split.
func wrap(s string, width int, breakLong bool) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	if breakLong {
		var split []string
		for _, w := range words {
			r := []rune(w)
			for len(r) > width {
				split = append(split, string(r[:width]))
				r = r[width:]
			}
			split = append(split, string(r))
		}
		words = split
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
