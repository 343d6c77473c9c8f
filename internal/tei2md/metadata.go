package tei2md

import (
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"

	cerrors "github.com/nuskha/nuskha/internal/errors"
	"github.com/nuskha/nuskha/internal/mdown"
)

// Metadata extracts the teiHeader of a TEI document and formats it as a
// corpus metadata header, complete with magic value and header-end
// marker. Edition details from the sourceDesc are condensed into a single
// ed_info line; absent fields fall back to "n.n.", "n.p." and "n.d.".
func Metadata(src string) (string, error) {
	doc, err := xmlquery.Parse(strings.NewReader(src))
	if err != nil {
		return "", cerrors.Wrap(err, cerrors.CategoryParse, cerrors.SeverityError,
			"parsing TEI document")
	}
	header := xmlquery.FindOne(doc, "//teiHeader")
	if header == nil {
		return "", cerrors.New(cerrors.CategoryMetadata, cerrors.SeverityWarning,
			"TEI document has no teiHeader")
	}

	var meta strings.Builder
	fileDesc := xmlquery.FindOne(header, ".//fileDesc")
	for _, key := range []string{"author", "title"} {
		if fileDesc == nil {
			break
		}
		if n := xmlquery.FindOne(fileDesc, ".//"+key); n != nil {
			if v := strings.TrimSpace(n.InnerText()); v != "" {
				fmt.Fprintf(&meta, "#META# %s: %s\n", key, v)
			}
		}
	}

	source := map[string]string{
		"title": "", "author": "n.n.", "editor": "n.n.",
		"pubPlace": "n.p.", "publisher": "n.n.", "date": "n.d.",
	}
	sourceDesc := xmlquery.FindOne(header, ".//sourceDesc")
	var pages string
	if sourceDesc != nil {
		for key := range source {
			if n := xmlquery.FindOne(sourceDesc, ".//"+key); n != nil {
				if v := strings.TrimSpace(n.InnerText()); v != "" {
					source[key] = v
				}
			}
		}
		for _, n := range xmlquery.Find(sourceDesc, ".//biblScope") {
			switch n.SelectAttr("unit") {
			case "vol":
				pages += fmt.Sprintf("vol. %s ", n.InnerText())
			case "pp", "pages":
				pages += fmt.Sprintf("pp. %s", n.InnerText())
			}
		}
	}
	edInfo := fmt.Sprintf("Ed. %s (%s), %s, %s: %s",
		source["editor"], source["date"], source["title"],
		source["pubPlace"], source["publisher"])
	if pages != "" {
		edInfo += ", " + strings.TrimSpace(pages) + "."
	} else {
		edInfo += "."
	}
	fmt.Fprintf(&meta, "#META# ed_info: %s\n", edInfo)

	if textTag := xmlquery.FindOne(doc, "//text"); textTag != nil {
		if id := textTag.SelectAttr("id"); id != "" {
			fmt.Fprintf(&meta, "#META# coll_id: %s\n", id)
		}
	}
	return mdown.NewHeader(strings.TrimRight(meta.String(), "\n")), nil
}
