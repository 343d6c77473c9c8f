// Package tei2md converts TEI XML editions to the corpus markdown
// dialect.
//
// The document body is walked bottom-up with a tag-handler table, like
// package html2md, but over a proper XML tree: numbered division tags
// (div1, div2, div3) become headings of the corresponding level, line
// beginnings become wrapped-line markers and line groups become verse.
// The teiHeader is mined separately for the metadata header.
package tei2md

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/nuskha/nuskha/internal/html2md"
)

// HandlerFunc converts one element. text is the already-converted content
// of the element's children.
type HandlerFunc func(c *Converter, n *xmlquery.Node, text string) string

// Converter converts TEI XML to corpus markdown.
type Converter struct {
	handlers map[string]HandlerFunc
}

// New returns a Converter with the default TEI handler table.
func New() *Converter {
	c := &Converter{handlers: map[string]HandlerFunc{
		"div1":  makeDiv(1),
		"div2":  makeDiv(2),
		"div3":  makeDiv(3),
		"head":  convertHead,
		"lb":    convertLineBeginning,
		"lg":    convertLineGroup,
		"l":     convertLine,
		"p":     convertParagraph,
		"quote": passThrough,
		"div":   passThrough,
	}}
	return c
}

// WithHandler registers or replaces the handler for tag and returns the
// converter for chaining.
func (c *Converter) WithHandler(tag string, fn HandlerFunc) *Converter {
	c.handlers[tag] = fn
	return c
}

// Convert parses src as XML and converts it to corpus markdown.
func (c *Converter) Convert(src string) (string, error) {
	doc, err := xmlquery.Parse(strings.NewReader(src))
	if err != nil {
		return "", fmt.Errorf("tei2md: %w", err)
	}
	var b strings.Builder
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		b.WriteString(c.processNode(n))
	}
	return html2md.PostProcess(b.String()), nil
}

// Convert converts src with the default handler table.
func Convert(src string) (string, error) {
	return New().Convert(src)
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func (c *Converter) processNode(n *xmlquery.Node) string {
	switch n.Type {
	case xmlquery.TextNode, xmlquery.CharDataNode:
		if strings.TrimSpace(n.Data) == "" {
			return ""
		}
		return whitespaceRe.ReplaceAllString(n.Data, " ")
	case xmlquery.ElementNode:
		var b strings.Builder
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			b.WriteString(c.processNode(child))
		}
		text := b.String()
		if fn, ok := c.handlers[n.Data]; ok {
			return fn(c, n, text)
		}
		return text
	default:
		return ""
	}
}

var divTitleCleanRe = regexp.MustCompile(`  |: $`)

// makeDiv converts numbered division tags to headings carrying the
// division's type, number and name, e.g.
//
//	<div1 type="book" n="0" name="Preface"> -> ### | [book 0: Preface]
func makeDiv(level int) HandlerFunc {
	return func(c *Converter, n *xmlquery.Node, text string) string {
		title := fmt.Sprintf("%s %s: %s",
			n.SelectAttr("type"), n.SelectAttr("n"), n.SelectAttr("name"))
		title = strings.TrimSpace(divTitleCleanRe.ReplaceAllString(title, " "))
		return fmt.Sprintf("\n\n### %s [%s]\n\n%s\n\n",
			strings.Repeat("|", level), title, text)
	}
}

// convertHead renders section headings. No general rule maps <head> tags
// to a heading level, so they default to level three.
func convertHead(c *Converter, n *xmlquery.Node, text string) string {
	return fmt.Sprintf("\n\n### ||| %s\n\n", text)
}

func convertLineBeginning(c *Converter, n *xmlquery.Node, text string) string {
	return "\n~~"
}

// convertLineGroup renders a verse group: every direct <l> child becomes
// its own marked line.
func convertLineGroup(c *Converter, n *xmlquery.Node, text string) string {
	var lines []string
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && child.Data == "l" {
			lines = append(lines, strings.TrimSpace(child.InnerText()))
		}
	}
	return fmt.Sprintf("\n# %s\n\n", strings.Join(lines, "\n# "))
}

// convertLine passes single verse lines through; lines inside a line
// group are rebuilt by the group handler.
func convertLine(c *Converter, n *xmlquery.Node, text string) string {
	if n.Parent != nil && n.Parent.Data == "lg" {
		return ""
	}
	return text
}

func convertParagraph(c *Converter, n *xmlquery.Node, text string) string {
	if text == "" {
		return ""
	}
	return "\n\n# " + text + "\n\n"
}

func passThrough(c *Converter, n *xmlquery.Node, text string) string {
	return text
}
