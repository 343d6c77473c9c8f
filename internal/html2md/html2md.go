// Package html2md converts HTML to the corpus markdown dialect.
//
// Conversion walks the parsed HTML tree bottom-up: the text of a node's
// children is assembled first and then passed to the handler registered
// for the node's tag. Handlers live in a lookup table on the Converter,
// so a source-specific conversion replaces or adds handlers instead of
// subclassing. Divs and spans are dispatched on their class attribute:
// classes without a registered format are stripped, letting their content
// pass through.
package html2md

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Style selects the markdown flavour for headings and paragraphs.
type Style string

const (
	// StyleCorpus marks headings with "### |" pyramids and paragraphs
	// with "# ".
	StyleCorpus Style = "corpus"
	// StyleATX writes plain "#"-prefixed headings and bare paragraphs.
	StyleATX Style = "atx"
	// StyleATXClosed repeats the hashes after the heading text.
	StyleATXClosed Style = "atx_closed"
	// StyleUnderlined underlines level 1 and 2 headings with = and -.
	StyleUnderlined Style = "underlined"
)

// HandlerFunc converts one element. text is the already-converted content
// of the element's children.
type HandlerFunc func(c *Converter, n *html.Node, text string) string

// Options configures a Converter.
type Options struct {
	Style Style

	// Strip removes these tags together with their content.
	Strip []string
	// Convert, when non-empty, limits conversion to these tags; other
	// tags contribute only their text.
	Convert []string

	// Autolinks renders <a> tags whose text equals their href as <url>.
	Autolinks bool

	// Bullets are cycled through for nested unordered lists.
	Bullets string

	// ImageLinkRegex, when set, is replaced by ImageFolder in image
	// sources, rewriting remote image links to local paths.
	ImageLinkRegex string
	ImageFolder    string

	// ClassFormats maps div, span and p classes to a format string with
	// a %s placeholder for the content, e.g. "quran": "@QUR@ %s\n".
	ClassFormats map[string]string
}

// Converter converts HTML fragments to corpus markdown.
type Converter struct {
	opts     Options
	handlers map[string]HandlerFunc
	strip    map[string]struct{}
	convert  map[string]struct{}
	imageRe  *regexp.Regexp
}

// New returns a Converter with the default handler table and opts applied.
func New(opts Options) (*Converter, error) {
	if opts.Style == "" {
		opts.Style = StyleCorpus
	}
	if opts.Bullets == "" {
		opts.Bullets = "*+-"
	}
	if opts.ImageFolder == "" {
		opts.ImageFolder = "img"
	}
	if len(opts.Strip) > 0 && len(opts.Convert) > 0 {
		return nil, fmt.Errorf("html2md: specify either tags to strip or tags to convert, not both")
	}

	c := &Converter{
		opts:     opts,
		handlers: defaultHandlers(),
		strip:    make(map[string]struct{}),
		convert:  make(map[string]struct{}),
	}
	for _, t := range opts.Strip {
		c.strip[strings.ToLower(t)] = struct{}{}
	}
	for _, t := range opts.Convert {
		c.convert[strings.ToLower(t)] = struct{}{}
	}
	if opts.ImageLinkRegex != "" {
		re, err := regexp.Compile(opts.ImageLinkRegex)
		if err != nil {
			return nil, fmt.Errorf("html2md: bad image link regex: %w", err)
		}
		c.imageRe = re
	}
	return c, nil
}

// WithHandler registers or replaces the handler for tag and returns the
// converter for chaining.
func (c *Converter) WithHandler(tag string, fn HandlerFunc) *Converter {
	c.handlers[strings.ToLower(tag)] = fn
	return c
}

// Convert parses src as an HTML fragment and converts it.
func (c *Converter) Convert(src string) (string, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return "", fmt.Errorf("html2md: %w", err)
	}
	body := findElement(doc, "body")
	if body == nil {
		return "", nil
	}
	var b strings.Builder
	for n := body.FirstChild; n != nil; n = n.NextSibling {
		b.WriteString(c.processNode(n))
	}
	return c.PostProcess(b.String()), nil
}

// Convert converts src with the default options.
func Convert(src string) (string, error) {
	c, err := New(Options{Autolinks: true})
	if err != nil {
		return "", err
	}
	return c.Convert(src)
}

var whitespaceRe = regexp.MustCompile(`[\s]+`)

func (c *Converter) processNode(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return ""
		}
		return whitespaceRe.ReplaceAllString(n.Data, " ")
	case html.CommentNode:
		return ""
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if _, ok := c.strip[tag]; ok {
			return ""
		}
		var b strings.Builder
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			b.WriteString(c.processNode(child))
		}
		text := b.String()
		if fn, ok := c.handlers[tag]; ok && c.shouldConvert(tag) {
			return fn(c, n, text)
		}
		return text
	default:
		return ""
	}
}

func (c *Converter) shouldConvert(tag string) bool {
	if len(c.convert) > 0 {
		_, ok := c.convert[tag]
		return ok
	}
	return true
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, tag); found != nil {
			return found
		}
	}
	return nil
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// classes returns the element's class attribute split into single classes.
func classes(n *html.Node) []string {
	return strings.Fields(attr(n, "class"))
}

var lineBeginRe = regexp.MustCompile(`(?m)^`)

func indent(text string, level int) string {
	if text == "" {
		return ""
	}
	return lineBeginRe.ReplaceAllString(text, strings.Repeat("\t", level))
}

func underline(text, padChar string) string {
	text = strings.TrimRight(text, " \t")
	return text + "\n" + strings.Repeat(padChar, len([]rune(text)))
}
