// Package mdown holds the building blocks of the corpus text format: the
// header conventions, page markers, line reflowing and milestone tags.
//
// A corpus text file starts with a magic value, followed by a metadata
// header, a header-end marker, the text itself and optional endnotes. Long
// lines are wrapped at a fixed column with "~~" marking continuation
// lines, and a milestone tag is inserted after every fixed number of
// Arabic tokens so the text can be chunked without regard to structure.
package mdown

import (
	"fmt"
	"regexp"
	"strings"

	cerrors "github.com/nuskha/nuskha/internal/errors"
)

const (
	// MagicValue marks the first line of a corpus text file.
	MagicValue = "######OpenITI#"

	// HeaderSplitter separates the metadata header from the text.
	HeaderSplitter = "#META#Header#End#"

	// EndnoteSplitter separates the text from collected endnotes.
	EndnoteSplitter = "\n\n### |EDITOR|\nENDNOTES:\n\n"

	// Extension is given to freshly converted files, signalling that the
	// structural annotation has not been reviewed by a human yet.
	Extension = ".automARkdown"

	// DefaultMaxLineLen is the reflow column.
	DefaultMaxLineLen = 72

	// DefaultChunkLength is the number of Arabic tokens per milestone.
	DefaultChunkLength = 300
)

var headerSplitRe = regexp.MustCompile(`\n*` + HeaderSplitter + `\n*`)

// SplitHeader splits a corpus file into its metadata header and body.
// The header-end marker itself belongs to neither part.
func SplitHeader(text string) (header, body string, err error) {
	loc := headerSplitRe.FindStringIndex(text)
	if loc == nil {
		return "", "", cerrors.New(cerrors.CategoryParse, cerrors.SeverityError,
			fmt.Sprintf("text is missing the %s marker", HeaderSplitter))
	}
	return text[:loc[0]], text[loc[1]:], nil
}

// Compose joins a metadata header (which already starts with the magic
// value), the main text and optional endnotes into one file body.
func Compose(metadata, text, notes string) string {
	out := metadata + text
	if notes != "" {
		out += EndnoteSplitter + notes
	}
	return out
}

// NewHeader wraps formatted metadata lines in the magic value and the
// header-end marker.
func NewHeader(metadata string) string {
	return MagicValue + "\n\n\n" + metadata + "\n\n" + HeaderSplitter + "\n\n"
}

var (
	paragraphBreakRe = regexp.MustCompile(`[\n\r]{2,}(?:[^#|P]|$)`)
	strayHashLineRe  = regexp.MustCompile(`[\n\r]+#* *[\n\r]+`)
)

// MarkParagraphs puts a paragraph marker ("# ") after every double line
// break that is not already followed by structural annotation or a page
// marker, and removes stray empty or hash-only lines left over from
// conversion.
func MarkParagraphs(text string) string {
	// Go's regexp has no lookahead, so match the follower and put it back.
	out := paragraphBreakRe.ReplaceAllStringFunc(text, func(m string) string {
		follower := strings.TrimLeft(m, "\n\r")
		return "\n\n# " + follower
	})
	return strayHashLineRe.ReplaceAllString(out, "\n\n")
}

// PageMarker formats a page marker for the given volume and page,
// e.g. PageV01P023.
func PageMarker(vol, page int) string {
	return fmt.Sprintf("PageV%02dP%03d", vol, page)
}

var pageMarkerRe = regexp.MustCompile(`PageV(\d+)P(\d+)`)

// LastPageMarker returns the last page marker in text, or "" if there is
// none.
func LastPageMarker(text string) string {
	all := pageMarkerRe.FindAllString(text, -1)
	if len(all) == 0 {
		return ""
	}
	return all[len(all)-1]
}
