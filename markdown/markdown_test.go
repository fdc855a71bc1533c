package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(s string) string {
	return string(Render([]byte(s)))
}

func TestRenderHeadings(t *testing.T) {
	tests := []struct {
		input string
		tag   string
		text  string
	}{
		{"# Heading 1", "<h1", "Heading 1</h1>"},
		{"## Heading 2", "<h2", "Heading 2</h2>"},
		{"### Heading 3", "<h3", "Heading 3</h3>"},
	}
	for _, tt := range tests {
		got := render(tt.input)
		assert.Contains(t, got, tt.tag, tt.input)
		assert.Contains(t, got, tt.text, tt.input)
	}
}

func TestRenderInline(t *testing.T) {
	got := render("Some **bold**, *italic* and `code`.")
	assert.Contains(t, got, "<strong>bold</strong>")
	assert.Contains(t, got, "<em>italic</em>")
	assert.Contains(t, got, "<code>code</code>")
}

func TestRenderLists(t *testing.T) {
	got := render("- one\n- two\n\n1. first\n2. second\n")
	assert.Contains(t, got, "<ul>")
	assert.Contains(t, got, "<li>one</li>")
	assert.Contains(t, got, "<ol>")
	assert.Contains(t, got, "<li>second</li>")
}

func TestRenderCodeBlockWithLanguage(t *testing.T) {
	got := render("```go\nfmt.Println(\"hello\")\n```\n")
	assert.Contains(t, got, `<div class="code-block-wrapper">`)
	assert.Contains(t, got, `<span class="code-lang code-lang-go">go</span>`)
	assert.Contains(t, got, `class="chroma"`)
	assert.Contains(t, got, "Println")
}

func TestRenderCodeBlockWithoutLanguage(t *testing.T) {
	got := render("```\nplain <code>\n```\n")
	assert.NotContains(t, got, "code-lang")
	assert.NotContains(t, got, "code-block-wrapper")
	assert.Contains(t, got, "<pre><code>")
	assert.Contains(t, got, "plain &lt;code&gt;")
}

func TestRenderStripsScripts(t *testing.T) {
	got := render("Hello <script>alert('x')</script> <img src=x onerror=alert(1)>")
	assert.NotContains(t, got, "<script")
	assert.NotContains(t, got, "onerror")
	assert.Contains(t, got, "Hello")
}

func TestRenderDropsJavascriptLinks(t *testing.T) {
	got := render("[click](javascript:alert(1))")
	assert.NotContains(t, got, "javascript:")
	assert.Contains(t, got, "click")
}

func TestRenderExternalLinksOpenInNewTab(t *testing.T) {
	got := render("[site](https://example.com/a_b_c)")
	assert.Contains(t, got, `href="https://example.com/a_b_c"`)
	assert.Contains(t, got, `target="_blank"`)
}

func TestRenderTables(t *testing.T) {
	got := render("| a | b |\n|---|---|\n| 1 | 2 |\n")
	assert.Contains(t, got, "<table>")
	assert.Contains(t, got, "<td>1</td>")
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown("# Title").Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "Title</h1>")
}

func TestHighlightCodeUnknownLanguage(t *testing.T) {
	got := HighlightCode("x := 1", "no-such-language")
	assert.Contains(t, got, "x")
	assert.True(t, strings.Contains(got, "<pre"))
}

func TestStyleCSS(t *testing.T) {
	assert.Contains(t, StyleCSS(DefaultStyle), ".chroma")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hi there", Sanitize("<b>hi</b> there"))
	assert.Equal(t, "", Sanitize("<script>alert(1)</script>"))
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/relative", "/relative"},
		{"#anchor", "#anchor"},
		{"https://example.com", "https://example.com"},
		{"mailto:a@b.c", "mailto:a@b.c"},
		{"javascript:alert(1)", ""},
		{"data:text/html,hi", ""},
		{"no-scheme", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeURL(tt.in), tt.in)
	}
}
