package diff

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivalscope/rivalscope/internal/domain"
)

const homepageBefore = `<html><body>
<header><nav>
  <a href="/product">Product</a>
  <a href="/pricing">Pricing</a>
</nav>
<a href="/signup">Get Started</a>
</header>
<h1>Ship faster</h1>
<h2>Features</h2>
<p>We help teams ship.</p>
</body></html>`

func TestDetect_IdenticalDocuments(t *testing.T) {
	out := Detect(homepageBefore, homepageBefore, "https://acme.com/", domain.PageTypeHomepage)
	assert.Empty(t, out)
}

func TestDetect_Idempotent(t *testing.T) {
	after := strings.Replace(homepageBefore, "<h2>Features</h2>", "<h2>Features</h2><h2>Security</h2>", 1)

	first := Detect(homepageBefore, after, "https://acme.com/", domain.PageTypeHomepage)
	second := Detect(homepageBefore, after, "https://acme.com/", domain.PageTypeHomepage)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestDetect_TextAndStructuralChange(t *testing.T) {
	after := strings.Replace(homepageBefore, "<h2>Features</h2>", "<h2>Features</h2><h2>Security</h2>", 1)

	out := Detect(homepageBefore, after, "https://acme.com/", domain.PageTypeHomepage)
	require.NotEmpty(t, out)

	assert.Equal(t, domain.ChangeTypeText, out[0].Type)

	var added []Detected
	for _, d := range out {
		if d.Type == domain.ChangeTypeElementAdded {
			added = append(added, d)
		}
	}
	require.Len(t, added, 1)
	details, ok := added[0].Details.(domain.ElementChangeDetails)
	require.True(t, ok)
	assert.Equal(t, "heading", details.Kind)
	assert.Equal(t, "security", details.Text)
}

func TestDetect_ElementRemoved(t *testing.T) {
	after := strings.Replace(homepageBefore, "<h2>Features</h2>", "", 1)

	out := Detect(homepageBefore, after, "https://acme.com/", domain.PageTypeHomepage)

	var removed []Detected
	for _, d := range out {
		if d.Type == domain.ChangeTypeElementRemoved {
			removed = append(removed, d)
		}
	}
	require.Len(t, removed, 1)
	assert.Equal(t, "features", removed[0].Details.(domain.ElementChangeDetails).Text)
}

func TestDetect_ManyStructuralCollapses(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "<h2>Brand new section %d</h2>", i)
	}
	b.WriteString("</body></html>")

	out := Detect("<html><body><p>old</p></body></html>", b.String(), "https://acme.com/", domain.PageTypeHomepage)

	var collapsed []Detected
	for _, d := range out {
		assert.NotEqual(t, domain.ChangeTypeElementAdded, d.Type)
		if d.Type == domain.ChangeTypeManyStructural {
			collapsed = append(collapsed, d)
		}
	}
	require.Len(t, collapsed, 1)
	details := collapsed[0].Details.(domain.ManyStructuralDetails)
	assert.Equal(t, 30, details.AddedCount)
}

func TestDetect_CTATextChange(t *testing.T) {
	after := strings.Replace(homepageBefore, ">Get Started<", ">Start Free Trial<", 1)

	out := Detect(homepageBefore, after, "https://acme.com/", domain.PageTypeHomepage)

	var ctaChanges []Detected
	for _, d := range out {
		if d.Type == domain.ChangeTypeCTAText {
			ctaChanges = append(ctaChanges, d)
		}
	}
	require.Len(t, ctaChanges, 1)
	details := ctaChanges[0].Details.(domain.CTATextDetails)
	assert.Equal(t, "https://acme.com/signup", details.Href)
	assert.Equal(t, "Get Started", details.BeforeText)
	assert.Equal(t, "Start Free Trial", details.AfterText)
}

func TestDetect_NavChange(t *testing.T) {
	after := strings.Replace(homepageBefore, `<a href="/pricing">Pricing</a>`, `<a href="/platform">Platform</a>`, 1)

	out := Detect(homepageBefore, after, "https://acme.com/", domain.PageTypeHomepage)

	var navChanges []Detected
	for _, d := range out {
		if d.Type == domain.ChangeTypeNav {
			navChanges = append(navChanges, d)
		}
	}
	require.Len(t, navChanges, 1)
	details := navChanges[0].Details.(domain.NavChangeDetails)
	require.Len(t, details.Added, 1)
	require.Len(t, details.Removed, 1)
	assert.Equal(t, "Platform", details.Added[0].Text)
	assert.Equal(t, "Pricing", details.Removed[0].Text)
}

func TestDetect_MultibyteListItemsStayValidUTF8(t *testing.T) {
	long := strings.Repeat("日", 40) // 120 bytes, capped mid-rune without care
	before := `<html><body><ul><li>` + long + `</li></ul></body></html>`
	after := `<html><body><ul><li>replacement item</li></ul></body></html>`

	out := Detect(before, after, "https://acme.com/blog", domain.PageTypeBlog)
	require.NotEmpty(t, out)

	var sawStructural bool
	for _, d := range out {
		assert.True(t, utf8.ValidString(d.Summary), "summary %q must stay valid UTF-8", d.Summary)
		switch d.Type {
		case domain.ChangeTypeElementAdded, domain.ChangeTypeElementRemoved:
			sawStructural = true
		}
	}
	assert.True(t, sawStructural)
}
