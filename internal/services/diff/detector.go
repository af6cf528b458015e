// Package diff turns two snapshots of the same page into typed,
// deterministic change records. Given identical inputs both passes always
// return the same ordered set; nothing here reads the clock or any random
// source.
package diff

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/rivalscope/rivalscope/internal/domain"
	"github.com/rivalscope/rivalscope/internal/services/extract"
)

// structuralCap bounds how many add/remove entries a single diff may emit
// before collapsing into one summary change.
const structuralCap = 25

// Detected is an intermediate change record. The classifier assigns its
// category and impact before persistence.
type Detected struct {
	Type    domain.ChangeType
	Summary string
	Details domain.ChangeDetails
}

// Detect diffs two HTML documents of the same page into zero or more typed
// changes. The result order is canonical: text change, structural
// adds/removes (sorted by key), CTA text changes (sorted by href), nav
// change.
func Detect(beforeHTML, afterHTML, pageURL string, pageType domain.PageType) []Detected {
	var out []Detected

	beforeText := extract.VisibleText(beforeHTML)
	afterText := extract.VisibleText(afterHTML)
	if beforeText != afterText {
		out = append(out, Detected{
			Type:    domain.ChangeTypeText,
			Summary: fmt.Sprintf("Visible page text changed (%d -> %d characters)", len(beforeText), len(afterText)),
			Details: domain.TextChangeDetails{BeforeLength: len(beforeText), AfterLength: len(afterText)},
		})
	}

	out = append(out, structuralDiff(beforeHTML, afterHTML)...)
	out = append(out, ctaTextDiff(beforeHTML, afterHTML, pageURL)...)
	out = append(out, navDiff(beforeHTML, afterHTML, pageURL)...)

	return out
}

// structuralElement is one entry of the coarse structural fingerprint
type structuralElement struct {
	kind string // heading, landmark, list_item
	key  string
	text string
}

// structuralFingerprint collects heading tag+text pairs, section/article
// landmark keys and capped list-item text into a comparable set.
func structuralFingerprint(src string) map[string]structuralElement {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil || doc == nil {
		return nil
	}

	set := map[string]structuralElement{}
	listItems := 0
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "template", "noscript":
				return
			case "h1", "h2", "h3":
				text := extract.NormalizeText(subtreeText(n))
				if text != "" {
					key := n.Data + "|" + text
					set[key] = structuralElement{kind: "heading", key: key, text: text}
				}
			case "section", "article":
				if lk := landmarkKey(n); lk != "" {
					key := n.Data + "|" + lk
					set[key] = structuralElement{kind: "landmark", key: key, text: lk}
				}
			case "li":
				if listItems < 100 {
					text := extract.NormalizeText(subtreeText(n))
					if text != "" {
						text = extract.Truncate(text, 80)
						listItems++
						key := "li|" + text
						set[key] = structuralElement{kind: "list_item", key: key, text: text}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	return set
}

// landmarkKey identifies a section/article by id, aria-label or its first
// heading text.
func landmarkKey(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "id" || a.Key == "aria-label" {
			if v := strings.TrimSpace(a.Val); v != "" {
				return extract.NormalizeText(v)
			}
		}
	}
	var heading string
	var visit func(c *html.Node)
	visit = func(c *html.Node) {
		if heading != "" {
			return
		}
		if c.Type == html.ElementNode && (c.Data == "h1" || c.Data == "h2" || c.Data == "h3" || c.Data == "h4") {
			heading = extract.NormalizeText(subtreeText(c))
			return
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			visit(cc)
		}
	}
	visit(n)
	return heading
}

func subtreeText(n *html.Node) string {
	var b strings.Builder
	var visit func(c *html.Node)
	visit = func(c *html.Node) {
		if c.Type == html.ElementNode {
			switch c.Data {
			case "script", "style", "template", "noscript":
				return
			}
		}
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteString(" ")
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			visit(cc)
		}
	}
	visit(n)
	return b.String()
}

func structuralDiff(beforeHTML, afterHTML string) []Detected {
	before := structuralFingerprint(beforeHTML)
	after := structuralFingerprint(afterHTML)

	var added, removed []structuralElement
	for key, el := range after {
		if _, ok := before[key]; !ok {
			added = append(added, el)
		}
	}
	for key, el := range before {
		if _, ok := after[key]; !ok {
			removed = append(removed, el)
		}
	}
	sort.Slice(added, func(i, j int) bool { return added[i].key < added[j].key })
	sort.Slice(removed, func(i, j int) bool { return removed[i].key < removed[j].key })

	if len(added) > structuralCap || len(removed) > structuralCap {
		return []Detected{{
			Type:    domain.ChangeTypeManyStructural,
			Summary: fmt.Sprintf("Many structural changes (%d added, %d removed)", len(added), len(removed)),
			Details: domain.ManyStructuralDetails{AddedCount: len(added), RemovedCount: len(removed)},
		}}
	}

	var out []Detected
	for _, el := range added {
		out = append(out, Detected{
			Type:    domain.ChangeTypeElementAdded,
			Summary: fmt.Sprintf("New %s: %q", el.kind, el.text),
			Details: domain.ElementChangeDetails{Kind: el.kind, Key: el.key, Text: el.text},
		})
	}
	for _, el := range removed {
		out = append(out, Detected{
			Type:    domain.ChangeTypeElementRemoved,
			Summary: fmt.Sprintf("Removed %s: %q", el.kind, el.text),
			Details: domain.ElementChangeDetails{Kind: el.kind, Key: el.key, Text: el.text},
		})
	}
	return out
}

// ctaTextDiff reports CTAs whose resolved href survived but whose text
// changed.
func ctaTextDiff(beforeHTML, afterHTML, pageURL string) []Detected {
	before := extract.Extract(beforeHTML, pageURL)
	after := extract.Extract(afterHTML, pageURL)

	byHref := map[string]domain.CTA{}
	for _, c := range before.CTAs {
		if _, ok := byHref[c.Href]; !ok {
			byHref[c.Href] = c
		}
	}

	var out []Detected
	seen := map[string]bool{}
	for _, c := range after.CTAs {
		prev, ok := byHref[c.Href]
		if !ok || seen[c.Href] {
			continue
		}
		if extract.NormalizeText(prev.Text) != extract.NormalizeText(c.Text) {
			seen[c.Href] = true
			out = append(out, Detected{
				Type:    domain.ChangeTypeCTAText,
				Summary: fmt.Sprintf("CTA text changed from %q to %q", prev.Text, c.Text),
				Details: domain.CTATextDetails{Href: c.Href, BeforeText: prev.Text, AfterText: c.Text},
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Details.(domain.CTATextDetails).Href < out[j].Details.(domain.CTATextDetails).Href
	})
	return out
}

// navDiff set-differences the (href, normalized text) pairs of nav/header
// anchors.
func navDiff(beforeHTML, afterHTML, pageURL string) []Detected {
	before := extract.Extract(beforeHTML, pageURL)
	after := extract.Extract(afterHTML, pageURL)

	key := func(n domain.NavItem) string { return n.Href + "|" + extract.NormalizeText(n.Text) }

	beforeSet := map[string]domain.NavItem{}
	for _, n := range before.NavItems {
		beforeSet[key(n)] = n
	}
	afterSet := map[string]domain.NavItem{}
	for _, n := range after.NavItems {
		afterSet[key(n)] = n
	}

	var added, removed []domain.NavItem
	for k, n := range afterSet {
		if _, ok := beforeSet[k]; !ok {
			added = append(added, n)
		}
	}
	for k, n := range beforeSet {
		if _, ok := afterSet[k]; !ok {
			removed = append(removed, n)
		}
	}
	if len(added) == 0 && len(removed) == 0 {
		return nil
	}
	sort.Slice(added, func(i, j int) bool { return key(added[i]) < key(added[j]) })
	sort.Slice(removed, func(i, j int) bool { return key(removed[i]) < key(removed[j]) })

	return []Detected{{
		Type:    domain.ChangeTypeNav,
		Summary: fmt.Sprintf("Navigation changed (%d added, %d removed)", len(added), len(removed)),
		Details: domain.NavChangeDetails{Added: added, Removed: removed},
	}}
}
