// Package preview renders a mARkdown document as a standalone HTML page
// for visual inspection. The corpus dialect tokens are translated to
// CommonMark plus a few class-carrying HTML elements, and the result is
// rendered through goldmark.
package preview

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	cerrors "github.com/nuskha/nuskha/internal/errors"
	"github.com/nuskha/nuskha/internal/mdown"
)

// HTMLHeader opens the standalone preview page.
const HTMLHeader = `<html>
  <head>
    <style>
      .entry-title {
        font-size: 20px;
      }
    </style>
  </head>
  <body>
`

// HTMLFooter closes the standalone preview page.
const HTMLFooter = `  </body>
</html>`

// ContentPlaceholder marks where the rendered body goes in a custom
// page template.
const ContentPlaceholder = "{{content}}"

// Template wraps the rendered body in page chrome.
type Template struct {
	Header string
	Footer string
}

// LoadTemplate reads a page template file and splits it at the content
// placeholder.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.ReadFailed(path, err)
	}
	header, footer, ok := strings.Cut(string(data), ContentPlaceholder)
	if !ok {
		return nil, cerrors.New(cerrors.CategoryConfig, cerrors.SeverityFatal,
			fmt.Sprintf("template %s is missing the %s placeholder", path, ContentPlaceholder))
	}
	return &Template{Header: header, Footer: footer}, nil
}

var (
	wrapRe      = regexp.MustCompile(`\n~~`)
	editorialRe = regexp.MustCompile(`(?s)### \|EDITOR\| ?\n(.+?)(\n###|\z)`)
	headingRe   = regexp.MustCompile(`### (\|+) (.*)`)
	paraMarkRe  = regexp.MustCompile(`(?m)^# `)
	poetryRe    = regexp.MustCompile(`(?m)^(.+?) %~% (.+)$`)
	pageRe      = regexp.MustCompile(`PageV(\d+)P(\d+)`)
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		html.WithUnsafe(), // class-carrying elements from the translation pass
		html.WithXHTML(),
	),
)

// Render converts a mARkdown document into a standalone HTML page using
// the built-in page chrome. The metadata header is dropped; a document
// without a header is rendered whole.
func Render(text string) ([]byte, error) {
	return RenderWith(text, &Template{Header: HTMLHeader, Footer: HTMLFooter})
}

// RenderWith renders the document into the given page template.
func RenderWith(text string, tpl *Template) ([]byte, error) {
	if _, body, err := mdown.SplitHeader(text); err == nil {
		text = body
	}
	text = translate(text)

	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return nil, cerrors.Wrap(err, cerrors.CategoryConvert, cerrors.SeverityError,
			"rendering markdown preview")
	}
	page := tpl.Header + buf.String() + tpl.Footer
	return []byte(page), nil
}

// translate rewrites the corpus dialect into CommonMark. Headings keep
// their depth, page markers become anchors, milestones are dropped.
func translate(text string) string {
	text = mdown.StripMilestones(text)
	text = wrapRe.ReplaceAllString(text, " ")

	text = editorialRe.ReplaceAllString(text,
		"<div class=\"editorial\">\n\n$1\n\n</div>\n$2")

	text = paraMarkRe.ReplaceAllString(text, "\n")

	text = headingRe.ReplaceAllStringFunc(text, func(m string) string {
		g := headingRe.FindStringSubmatch(m)
		return strings.Repeat("#", len(g[1])) + " " + g[2]
	})

	text = poetryRe.ReplaceAllString(text,
		`<span class="hemistych1">$1</span> <span class="hemistych2">$2</span>`)

	return pageRe.ReplaceAllStringFunc(text, func(m string) string {
		g := pageRe.FindStringSubmatch(m)
		return fmt.Sprintf(`<a class="page" n="%s.%s"></a>`, g[1], g[2])
	})
}
