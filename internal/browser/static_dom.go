package browser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Elements whose content is never rendered
var nonRendered = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"template": true,
	"noscript": true,
	"title":    true,
	"meta":     true,
	"link":     true,
}

// Elements that start a new line of text
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "td": true, "th": true, "tr": true, "ul": true,
}

var textInputTypes = map[string]bool{
	"":         true,
	"text":     true,
	"search":   true,
	"email":    true,
	"password": true,
	"tel":      true,
	"url":      true,
	"number":   true,
}

// isDisplayed approximates visibility from markup alone: the element and its
// ancestors must be rendered and not hidden by attribute or inline style.
func isDisplayed(sel *goquery.Selection) bool {
	if sel.Length() == 0 {
		return false
	}
	if goquery.NodeName(sel) == "input" {
		if t, _ := sel.Attr("type"); strings.EqualFold(t, "hidden") {
			return false
		}
	}
	if hiddenByStyle(sel, "visibility", "hidden", "collapse") {
		return false
	}
	for n := sel.Get(0); n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if nonRendered[n.Data] {
			return false
		}
		s := goquery.NewDocumentFromNode(n).Selection
		if _, hidden := s.Attr("hidden"); hidden {
			return false
		}
		if hiddenByStyle(s, "display", "none") {
			return false
		}
	}
	return true
}

func hiddenByStyle(sel *goquery.Selection, property string, values ...string) bool {
	style, ok := sel.Attr("style")
	if !ok {
		return false
	}
	for _, decl := range strings.Split(style, ";") {
		name, value, found := strings.Cut(decl, ":")
		if !found || !strings.EqualFold(strings.TrimSpace(name), property) {
			continue
		}
		value = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important")))
		for _, v := range values {
			if value == v {
				return true
			}
		}
	}
	return false
}

func isEditable(sel *goquery.Selection) bool {
	if _, disabled := sel.Attr("disabled"); disabled {
		return false
	}
	if _, readonly := sel.Attr("readonly"); readonly {
		return false
	}
	switch goquery.NodeName(sel) {
	case "textarea":
		return true
	case "input":
		t, _ := sel.Attr("type")
		return textInputTypes[strings.ToLower(t)]
	}
	ce, ok := sel.Attr("contenteditable")
	return ok && !strings.EqualFold(ce, "false")
}

// renderedText collapses whitespace the way a browser lays out inline text
// and drops the content of hidden descendants.
func renderedText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if n != sel.Get(0) {
				s := goquery.NewDocumentFromNode(n).Selection
				if nonRendered[n.Data] || !selfDisplayed(s) {
					return
				}
			}
		}
		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte(' ')
		}
	}
	walk(sel.Get(0))
	return strings.Join(strings.Fields(b.String()), " ")
}

func selfDisplayed(sel *goquery.Selection) bool {
	if _, hidden := sel.Attr("hidden"); hidden {
		return false
	}
	if goquery.NodeName(sel) == "input" {
		if t, _ := sel.Attr("type"); strings.EqualFold(t, "hidden") {
			return false
		}
	}
	return !hiddenByStyle(sel, "display", "none")
}
