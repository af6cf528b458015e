package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/net/html"
)

// Tags whose content never counts as visible text
var invisibleTags = map[string]bool{
	"script":   true,
	"style":    true,
	"template": true,
	"noscript": true,
	"iframe":   true,
	"svg":      true,
}

// NormalizeText lowercases and collapses all whitespace runs to single
// spaces. All comparisons in the diff engine operate on this form.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// parseHTML parses an HTML document. html.Parse is error-tolerant; a nil
// node is only returned on truly unreadable input.
func parseHTML(src string) (*html.Node, error) {
	return html.Parse(strings.NewReader(src))
}

// walk traverses the tree pre-order. fn returning false skips the node's
// children. Invisible subtrees are never entered.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if n.Type == html.ElementNode && invisibleTags[n.Data] {
		return
	}
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// nodeText returns the concatenated visible text of a subtree, with
// whitespace collapsed.
func nodeText(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteString(" ")
		}
		return true
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// attr returns the value of the named attribute, or ""
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// hasAncestor reports whether any ancestor element matches one of tags
func hasAncestor(n *html.Node, tags ...string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		for _, t := range tags {
			if p.Data == t {
				return true
			}
		}
	}
	return false
}

// VisibleText returns the normalized visible-text fingerprint of a
// document. script/style/template content is excluded.
func VisibleText(src string) string {
	doc, err := parseHTML(src)
	if err != nil || doc == nil {
		return ""
	}
	return NormalizeText(nodeText(doc))
}

// ContentHash returns a short stable hash of the normalized visible text,
// used for quick snapshot equality checks.
func ContentHash(src string) string {
	sum := sha256.Sum256([]byte(VisibleText(src)))
	return hex.EncodeToString(sum[:8])
}
