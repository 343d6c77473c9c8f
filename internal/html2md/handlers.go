package html2md

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

func defaultHandlers() map[string]HandlerFunc {
	h := map[string]HandlerFunc{
		"a":          convertLink,
		"b":          convertStrong,
		"strong":     convertStrong,
		"blockquote": convertBlockquote,
		"br":         convertBreak,
		"em":         convertEmphasis,
		"i":          convertEmphasis,
		"img":        convertImage,
		"ul":         convertList,
		"ol":         convertList,
		"li":         convertListItem,
		"p":          convertParagraph,
		"table":      convertTable,
		"tr":         convertTableRow,
		"div":        convertClassDispatch,
		"span":       convertClassDispatch,
	}
	for n := 1; n <= 6; n++ {
		h["h"+strconv.Itoa(n)] = makeHeading(n)
	}
	return h
}

func convertLink(c *Converter, n *html.Node, text string) string {
	href := attr(n, "href")
	title := attr(n, "title")
	if c.opts.Autolinks && text == href && title == "" {
		return "<" + href + ">"
	}
	if href == "" {
		return text
	}
	titlePart := ""
	if title != "" {
		titlePart = fmt.Sprintf(" %q", title)
	}
	return fmt.Sprintf("[%s](%s%s)", text, href, titlePart)
}

func convertStrong(c *Converter, n *html.Node, text string) string {
	if text == "" {
		return ""
	}
	return "**" + text + "**"
}

func convertEmphasis(c *Converter, n *html.Node, text string) string {
	if text == "" {
		return ""
	}
	return "*" + text + "*"
}

func convertBlockquote(c *Converter, n *html.Node, text string) string {
	if text == "" {
		return ""
	}
	return "\n" + lineBeginRe.ReplaceAllString(text, "> ")
}

func convertBreak(c *Converter, n *html.Node, text string) string {
	return "  \n"
}

func makeHeading(level int) HandlerFunc {
	return func(c *Converter, n *html.Node, text string) string {
		text = strings.TrimRight(text, " \t")
		switch c.opts.Style {
		case StyleCorpus:
			return fmt.Sprintf("\n\n### %s %s\n\n", strings.Repeat("|", level), text)
		case StyleUnderlined:
			if level <= 2 {
				pad := "="
				if level == 2 {
					pad = "-"
				}
				return fmt.Sprintf("\n\n%s\n\n", underline(text, pad))
			}
		case StyleATXClosed:
			hashes := strings.Repeat("#", level)
			return fmt.Sprintf("\n\n%s %s %s\n\n", hashes, text, hashes)
		}
		return fmt.Sprintf("\n\n%s %s\n\n", strings.Repeat("#", level), text)
	}
}

func convertImage(c *Converter, n *html.Node, text string) string {
	alt := attr(n, "alt")
	src := attr(n, "src")
	title := attr(n, "title")
	titlePart := ""
	if title != "" {
		titlePart = fmt.Sprintf(" %q", title)
	}
	if c.imageRe != nil {
		src = c.imageRe.ReplaceAllString(src, c.opts.ImageFolder)
	}
	return fmt.Sprintf("![%s](%s%s)", alt, src, titlePart)
}

func convertList(c *Converter, n *html.Node, text string) string {
	// a list nested inside a list item is indented one level deeper
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "li" {
			return "\n\n" + indent(text, 1) + "\n"
		}
	}
	return "\n" + text + "\n"
}

func convertListItem(c *Converter, n *html.Node, text string) string {
	var bullet string
	if n.Parent != nil && n.Parent.Type == html.ElementNode && n.Parent.Data == "ol" {
		pos := 1
		for sib := n.Parent.FirstChild; sib != nil && sib != n; sib = sib.NextSibling {
			if sib.Type == html.ElementNode && sib.Data == "li" {
				pos++
			}
		}
		bullet = strconv.Itoa(pos) + "."
	} else {
		depth := -1
		for p := n; p != nil; p = p.Parent {
			if p.Type == html.ElementNode && p.Data == "ul" {
				depth++
			}
		}
		if depth < 0 {
			depth = 0
		}
		bullets := []rune(c.opts.Bullets)
		bullet = string(bullets[depth%len(bullets)])
	}
	return fmt.Sprintf("%s %s\n", bullet, text)
}

func convertParagraph(c *Converter, n *html.Node, text string) string {
	if text == "" {
		return ""
	}
	if format, ok := classFormat(c, n); ok {
		return fmt.Sprintf(format, text)
	}
	if c.opts.Style == StyleCorpus {
		return "\n\n# " + text + "\n\n"
	}
	return "\n\n" + text + "\n\n"
}

func convertTable(c *Converter, n *html.Node, text string) string {
	return "\n\n" + text + "\n\n"
}

func convertTableRow(c *Converter, n *html.Node, text string) string {
	if headers := findAll(n, "th"); len(headers) > 0 {
		cells := make([]string, 0, len(headers))
		for _, th := range headers {
			cells = append(cells, nodeText(th))
		}
		row := strings.Join(cells, "|")
		return fmt.Sprintf("|%s|\n|%s|\n", row, strings.Repeat("-", len([]rune(row))))
	}
	var cells []string
	for _, td := range findAll(n, "td") {
		cells = append(cells, strings.ReplaceAll(spacedText(td), "\n", " "))
	}
	return fmt.Sprintf("|%s|\n", strings.Join(cells, "|"))
}

// convertClassDispatch handles div and span tags: a registered class
// format wraps the content, anything else passes the content through.
func convertClassDispatch(c *Converter, n *html.Node, text string) string {
	if format, ok := classFormat(c, n); ok {
		if text == "" {
			return ""
		}
		return fmt.Sprintf(format, text)
	}
	return text
}

func classFormat(c *Converter, n *html.Node) (string, bool) {
	for _, class := range classes(n) {
		if format, ok := c.opts.ClassFormats[class]; ok {
			return format, true
		}
	}
	return "", false
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == tag {
			out = append(out, child)
		}
		out = append(out, findAll(child, tag)...)
	}
	return out
}

// nodeText concatenates all text nodes under n.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}

// spacedText joins the trimmed text nodes under n with single spaces.
func spacedText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}
