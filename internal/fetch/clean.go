package fetch

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// skippedElements are removed wholesale before text extraction. They hold
// page chrome and machinery, not recipe content.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"iframe":   true,
	"svg":      true,
}

// blockElements get a line break after their text so lists and headings
// stay visually separated in the cleaned output.
var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "br": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "section": true, "article": true,
}

// CleanHTML reduces an HTML document to readable text. Malformed markup
// is tolerated: the x/net/html parser never fails on real-world pages,
// and any parse error degrades to returning nothing.
func CleanHTML(raw []byte) string {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			b.WriteByte('\n')
		}
	}
	walk(doc)

	return collapseWhitespace(b.String())
}

// collapseWhitespace squeezes runs of spaces and blank lines so the
// cleaned text spends its rune budget on content.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// Truncate cuts s to at most maxRunes runes, appending an ellipsis when
// anything was dropped.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}

	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}
