package tei2md

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nuskha/nuskha/internal/mdown"
)

var (
	pageBeginningRe = regexp.MustCompile(`<pb n="(\d+)"/?>`)
	pageSpanRe      = regexp.MustCompile(`<span [^>]+pb-(\d+)[^>]+>`)

	dashWrapRe    = regexp.MustCompile(`-[\n\r]+~~`)
	wrapRe        = regexp.MustCompile(`[\n\r]+~~`)
	doubleSpaceRe = regexp.MustCompile(` {2,}`)
	leadingPageRe = regexp.MustCompile(`\APageV\d+P000\n*`)
)

// PreprocessPageNumbers turns TEI page beginnings into corpus page
// endings: every stretch of text up to the next <pb n="..."/> tag is
// closed with a PageV00PNNN marker carrying the number of the page the
// stretch belongs to. Text before the first page beginning gets page
// number zero.
func PreprocessPageNumbers(s string) string {
	body, tail, hasTail := strings.Cut(s, "</body>")

	re := pageBeginningRe
	locs := re.FindAllStringSubmatchIndex(body, -1)
	if len(locs) == 0 {
		re = pageSpanRe
		locs = re.FindAllStringSubmatchIndex(body, -1)
	}

	var b strings.Builder
	last := 0
	prevPage := 0
	flush := func(end int) {
		segment := body[last:end]
		if segment != "" || prevPage != 0 {
			b.WriteString(segment)
			fmt.Fprintf(&b, "\n\nPageV00P%03d\n", prevPage)
		}
	}
	for _, loc := range locs {
		flush(loc[0])
		prevPage, _ = strconv.Atoi(body[loc[2]:loc[3]])
		last = loc[1]
	}
	flush(len(body))

	if hasTail {
		return b.String() + "</body>" + tail
	}
	return b.String()
}

// PreprocessWrappedLines unwraps lines that were wrapped in the source:
// a hyphen before a wrap marker joins the two halves of a broken word,
// any other wrap marker becomes a space.
func PreprocessWrappedLines(s string) string {
	s = dashWrapRe.ReplaceAllString(s, "")
	s = wrapRe.ReplaceAllString(s, " ")
	return doubleSpaceRe.ReplaceAllString(s, " ")
}

// PostProcess trims the converted text, drops a leading zero-page marker
// left over from page preprocessing and marks paragraph starts.
func PostProcess(text string) string {
	text = strings.TrimSpace(text)
	text = leadingPageRe.ReplaceAllString(text, "")
	return mdown.MarkParagraphs(text)
}
