package mdown

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nuskha/nuskha/internal/arabic"
	cerrors "github.com/nuskha/nuskha/internal/errors"
)

var (
	oldMilestoneRe = regexp.MustCompile(` Milestone300`)
	milestoneTagRe = regexp.MustCompile(` ms[A-Z]?\d+`)

	// every token, Arabic or not; \w in the corpus sense covers all
	// letters and digits, not just ASCII
	anyTokenRe = regexp.MustCompile(`[\p{L}\p{N}_]+|[^\p{L}\p{N}_]+`)
)

// MilestoneOptions controls milestone insertion.
type MilestoneOptions struct {
	// Length is the number of Arabic tokens per milestone
	// (DefaultChunkLength if zero).
	Length int
	// StartCount continues numbering from a previous part of the same
	// book.
	StartCount int
	// Letter distinguishes the parts of books split over several files,
	// e.g. "A". Tags then read msA001 instead of ms001.
	Letter string
}

// StripMilestones removes all milestone tags from text, both the current
// numbered form and the legacy fixed tag.
func StripMilestones(text string) string {
	text = oldMilestoneRe.ReplaceAllString(text, "")
	return milestoneTagRe.ReplaceAllString(text, "")
}

// InsertMilestones appends a numbered milestone tag after every
// opts.Length Arabic tokens of text, and after the final token. Existing
// tags are stripped first, so insertion is idempotent. The tag number is
// zero-padded to the width needed for the whole text.
//
// The tagged text must reduce back to the input when the tags are
// stripped; if it does not, the input is returned unchanged with an
// error. Returns the tagged text and the last milestone number used.
func InsertMilestones(text string, opts MilestoneOptions) (string, int, error) {
	length := opts.Length
	if length <= 0 {
		length = DefaultChunkLength
	}

	stripped := StripMilestones(strings.TrimRight(text, " \n\r\t"))
	total := arabic.CountTokens(stripped)
	width := len(strconv.Itoa(total / length))

	tokens := anyTokenRe.FindAllString(stripped, -1)
	var b strings.Builder
	tokenCount := 0
	msCount := opts.StartCount
	for i, tok := range tokens {
		if arabic.ContainsArabic(tok) {
			tokenCount++
		}
		b.WriteString(tok)
		if tokenCount == length || i == len(tokens)-1 {
			msCount++
			fmt.Fprintf(&b, " ms%s%0*d", opts.Letter, width, msCount)
			tokenCount = 0
		}
	}
	tagged := b.String()

	if StripMilestones(tagged) != stripped {
		return text, opts.StartCount, cerrors.New(cerrors.CategoryInternal,
			cerrors.SeverityError, "milestone insertion would alter the text")
	}
	return tagged, msCount, nil
}
