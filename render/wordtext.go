package render

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// WordText converts a sanitized rich text fragment to the plain text that
// goes into the Word document: <br> becomes a newline, paragraphs end with a
// newline, list items become bullet lines. Both projections must carry the
// same text, so the HTML preview receives this converted form as well.
func WordText(fragment string) string {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	var sb strings.Builder
	for _, n := range nodes {
		wordTextNode(n, &sb)
	}
	return strings.TrimSpace(sb.String())
}

func wordTextNode(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "br":
			sb.WriteString("\n")
			return
		case "li":
			sb.WriteString("• ")
			wordTextChildren(n, sb)
			sb.WriteString("\n")
			return
		case "p":
			wordTextChildren(n, sb)
			sb.WriteString("\n")
			return
		}
	}
	wordTextChildren(n, sb)
}

func wordTextChildren(n *html.Node, sb *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		wordTextNode(c, sb)
	}
}
