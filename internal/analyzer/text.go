package analyzer

import (
	"strings"

	"golang.org/x/net/html"
)

// skippedTextElements hold no human readable text.
var skippedTextElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"head":     true,
	"iframe":   true,
}

// ExtractText returns the readable text of an HTML document with
// whitespace collapsed. Unparseable input yields "".
func ExtractText(document string) string {
	doc, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if skippedTextElements[n.Data] {
				return
			}
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(b.String()), " ")
}
