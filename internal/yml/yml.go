// Package yml reads and writes the corpus metadata dialect.
//
// The dialect looks like YAML but is not: keys must contain at least one
// hash (#) and end with a colon; values may contain any character,
// including colons and newlines. Continuation lines of multiline values are
// indented with four spaces. Double blank lines and line breaks before
// bullet items (* or -) inside values are preserved across a parse/serialize
// round trip through a pilcrow (¶) encoding.
package yml

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Pilcrow encodes a forced line break inside a field value.
const Pilcrow = "¶"

// ErrEmpty indicates the input contained no records at all.
var ErrEmpty = errors.New("empty yml file")

// ErrNoKey indicates a line did not start with a well-formed key.
var ErrNoKey = errors.New("no valid yml key in line")

// Field is a single key/value pair. The key retains its trailing colon.
type Field struct {
	Key   string
	Value string
}

// Record is an ordered sequence of fields for one metadata record.
type Record []Field

// Get returns the value for key (first occurrence).
func (r Record) Get(key string) (string, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Set replaces the value for key, appending the field if absent.
func (r *Record) Set(key, value string) {
	for i, f := range *r {
		if f.Key == key {
			(*r)[i].Value = value
			return
		}
	}
	*r = append(*r, Field{Key: key, Value: value})
}

// Keys returns the keys in record order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for _, f := range r {
		keys = append(keys, f.Key)
	}
	return keys
}

// ToMap returns a key-to-value lookup map. Later duplicate keys win, as in
// a last-write lookup.
func (r Record) ToMap() map[string]string {
	m := make(map[string]string, len(r))
	for _, f := range r {
		m[f.Key] = f.Value
	}
	return m
}

var (
	// a key: hashes and word characters, at least one hash, ending in a colon
	keyRe = regexp.MustCompile(`^((?:#+\w+|\w+#+)[\w#]*:+)`)

	blankInValueRe = regexp.MustCompile(`\n([ \t]*)\n+([ \t]+)`)
	bulletBreakRe  = regexp.MustCompile(`[\n¶]([ \t]+[*\-])`)
	dashContRe     = regexp.MustCompile(`-\n+[ \t]+`)
	contCollapseRe = regexp.MustCompile(`\n+[ \t]+`)
	contKeepRe     = regexp.MustCompile(`\n([ \t]+)`)
)

// ParseOptions controls how multiline values are read.
type ParseOptions struct {
	// Reflow removes line breaks inside values (except double breaks and
	// breaks before bullet items) so values can be re-wrapped on output.
	// When false, the original layout is preserved: line breaks inside
	// values appear as pilcrows followed by their indentation.
	Reflow bool
}

// Parse splits dialect text into an ordered record.
//
// An empty input returns ErrEmpty. A line that does not start with a
// well-formed key (at least one hash, trailing colon) and is not an
// indented continuation returns an error wrapping ErrNoKey and naming the
// offending line.
func Parse(text string, opts ParseOptions) (Record, error) {
	data := strings.ReplaceAll(text, "\r\n", "\n")
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, ErrEmpty
	}

	// keep empty lines in multiline values:
	data = blankInValueRe.ReplaceAllString(data, Pilcrow+"$2"+Pilcrow+"$2")
	// keep line breaks before bullet list items:
	data = bulletBreakRe.ReplaceAllString(data, Pilcrow+"$1")

	if opts.Reflow {
		data = dashContRe.ReplaceAllString(data, "-")
		data = contCollapseRe.ReplaceAllString(data, " ")
	} else {
		data = contKeepRe.ReplaceAllString(data, Pilcrow+"$1")
	}

	var rec Record
	for _, line := range strings.Split(data, "\n") {
		key := keyRe.FindString(line)
		if key == "" {
			return nil, fmt.Errorf("%w: %q", ErrNoKey, line)
		}
		rec = append(rec, Field{
			Key:   key,
			Value: strings.TrimSpace(line[len(key):]),
		})
	}
	return rec, nil
}
