package narrative

import (
	"strings"

	"golang.org/x/net/html"
)

// blockTags are the HTML elements that terminate a line when flattening.
// List items are deliberately included so each bullet survives as its own
// line for the segmenter.
var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "br": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "table": true, "section": true, "article": true,
}

// Flatten linearizes a body into text lines. HTML input is parsed and
// flattened with block-element boundaries preserved; plain text is split on
// newlines. Blank lines are dropped either way.
func Flatten(body string) []string {
	if looksLikeHTML(body) {
		if lines := flattenHTML(body); lines != nil {
			return lines
		}
	}
	return splitLines(body)
}

// looksLikeHTML is a cheap sniff: a '<' followed somewhere by a '>' with at
// least one known tag name between them.
func looksLikeHTML(s string) bool {
	open := strings.IndexByte(s, '<')
	if open < 0 || strings.IndexByte(s[open:], '>') < 0 {
		return false
	}
	rest := strings.ToLower(s[open+1:])
	for tag := range blockTags {
		if strings.HasPrefix(rest, tag) {
			return true
		}
	}
	// Also accept inline-wrapped bodies ("<span>", "<b>", "<a href=...>").
	for _, tag := range []string{"span", "b", "i", "a ", "a>", "strong", "em", "html", "body"} {
		if strings.HasPrefix(rest, tag) {
			return true
		}
	}
	return false
}

func flattenHTML(body string) []string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var lines []string
	var current strings.Builder

	flush := func() {
		line := collapseSpace(current.String())
		current.Reset()
		if line != "" {
			lines = append(lines, line)
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			current.WriteString(n.Data)
			current.WriteByte(' ')
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
			if blockTags[n.Data] {
				flush()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			flush()
		}
	}
	walk(doc)
	flush()

	return lines
}

func splitLines(body string) []string {
	var lines []string
	for _, line := range strings.Split(body, "\n") {
		line = collapseSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
