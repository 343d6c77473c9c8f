package html2md

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// a temporary @TAG@ entity mark and the entity text up to the next
	// real line break (continuation lines marked with ~~ belong to the
	// entity)
	namedEntityRe = regexp.MustCompile(`(?s)@([A-Z.\d_\-]+)@ +(.+?)\n([^~]|\z)`)

	// separators between tokens of a named entity; brackets count as
	// separators so a bracket followed by a space is not counted twice
	entitySepRe = regexp.MustCompile(`[\n\r ~،؛:.!؟\-{}()\[\]]+`)

	deleteBlankRe    = regexp.MustCompile(`\n+DELETE_PREVIOUS_BLANKLINES`)
	lineEdgeSpaceRe  = regexp.MustCompile(` *(\n+) *`)
	excessNewlinesRe = regexp.MustCompile(`\n{3,}`)
	spaceRunRe       = regexp.MustCompile(` +`)
)

// PostProcess cleans up converted markdown: temporary @TAG@ named entity
// marks become numbered corpus tags, DELETE_PREVIOUS_BLANKLINES markers
// take out the blank lines before them, and spacing is normalized.
func PostProcess(text string) string {
	text = namedEntityRe.ReplaceAllStringFunc(text, rewriteNamedEntity)
	text = deleteBlankRe.ReplaceAllString(text, "")
	text = lineEdgeSpaceRe.ReplaceAllString(text, "$1")
	text = excessNewlinesRe.ReplaceAllString(text, "\n\n")
	return spaceRunRe.ReplaceAllString(text, " ")
}

// PostProcess with the converter's own settings; the default converter
// applies the package-level clean-up only.
func (c *Converter) PostProcess(text string) string {
	return PostProcess(text)
}

// rewriteNamedEntity turns "@QUR@ entity text\nx" into "@QUR02 entity
// text x": the first digit after the tag counts prefix letters that do
// not belong to the entity (always 0 here), the rest the entity length in
// tokens.
func rewriteNamedEntity(match string) string {
	m := namedEntityRe.FindStringSubmatch(match)
	if m == nil {
		return match
	}
	code, entity, follower := m[1], strings.TrimSpace(m[2]), m[3]

	// pad the entity so edge brackets register as separators, then the
	// separator count is the token count plus one
	tokens := len(entitySepRe.FindAllString(" "+entity+" ", -1)) - 1
	return fmt.Sprintf("@%s0%d %s %s", code, tokens, entity, follower)
}
