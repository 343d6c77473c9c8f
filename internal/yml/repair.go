package yml

import (
	"fmt"
	"regexp"
	"strings"
)

// corpus metadata keys are two digits, a hash and 14 more key characters
var repairKeyRe = regexp.MustCompile(`^\d\d#[#\w]{14}:?`)

// Repair reassembles a record from damaged dialect text in which
// continuation indentation was lost. Lines are grouped under the nearest
// preceding line that starts with a corpus-shaped key; everything else is
// treated as a continuation of the current field. Repair fails if the
// rebuilt record does not parse cleanly.
func Repair(text string) (Record, error) {
	data := strings.ReplaceAll(text, "\r\n", "\n")
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, ErrEmpty
	}

	var groups []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if repairKeyRe.MatchString(line) {
			groups = append(groups, line)
		} else if len(groups) > 0 {
			groups[len(groups)-1] += Pilcrow + line
		} else {
			return nil, fmt.Errorf("%w: %q", ErrNoKey, line)
		}
	}
	if len(groups) == 0 {
		return nil, ErrEmpty
	}

	var rec Record
	for _, g := range groups {
		key := repairKeyRe.FindString(g)
		val := strings.Trim(g[len(key):], Pilcrow+" \t")
		key = strings.TrimSuffix(key, ":") + ":"
		rec = append(rec, Field{Key: key, Value: val})
	}

	// only accept a repair that survives a round trip
	out := Serialize(rec, SerializeOptions{Reflow: true})
	if _, err := Parse(out, ParseOptions{}); err != nil {
		return nil, fmt.Errorf("repair produced unparseable output: %w", err)
	}
	return rec, nil
}
