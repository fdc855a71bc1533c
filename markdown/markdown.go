// Package markdown renders post content to sanitized HTML as a templ component.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/a-h/templ"
	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// DefaultStyle is the chroma style used for the highlight stylesheet.
const DefaultStyle = "github"

var (
	reLangName  = regexp.MustCompile(`[^a-zA-Z0-9+#-]`)
	reClassAttr = regexp.MustCompile(`^[a-zA-Z0-9\s_-]+$`)

	formatter = chromahtml.New(chromahtml.WithClasses(true))
	policy    = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(reClassAttr).OnElements("div", "span", "pre", "code")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Markdown returns a templ.Component that renders content as HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := w.Write(Render([]byte(content)))
		return err
	})
}

// Render converts md to HTML. Fenced code is highlighted and the output is
// sanitized, so raw HTML in md cannot inject scripts or event handlers.
func Render(md []byte) []byte {
	md = markdown.NormalizeNewlines(md)
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.Footnotes)
	doc := p.Parse(md)

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags:          mdhtml.CommonFlags | mdhtml.FootnoteReturnLinks,
		RenderNodeHook: renderHook,
	})
	return policy.SanitizeBytes(markdown.Render(doc, renderer))
}

func renderHook(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	code, ok := node.(*ast.CodeBlock)
	if !ok || !entering {
		return ast.GoToNext, false
	}
	lang := codeLanguage(code.Info)
	if lang == "" {
		fmt.Fprintf(w, "<pre><code>%s</code></pre>\n", html.EscapeString(string(code.Literal)))
		return ast.GoToNext, true
	}
	fmt.Fprintf(w, `<div class="code-block-wrapper"><span class="code-lang code-lang-%s">%s</span>`, lang, lang)
	io.WriteString(w, HighlightCode(string(code.Literal), lang))
	io.WriteString(w, "</div>\n")
	return ast.GoToNext, true
}

func codeLanguage(info []byte) string {
	fields := strings.Fields(string(info))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(reLangName.ReplaceAllString(fields[0], ""))
}

// HighlightCode returns code as chroma-highlighted HTML using CSS classes.
// Unknown languages fall back to plain text tokens.
func HighlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "<pre><code>" + html.EscapeString(code) + "</code></pre>"
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, styles.Get(DefaultStyle), iterator); err != nil {
		return "<pre><code>" + html.EscapeString(code) + "</code></pre>"
	}
	return buf.String()
}

// StyleCSS returns the stylesheet for the highlight classes in the named style.
func StyleCSS(name string) string {
	var buf bytes.Buffer
	if err := formatter.WriteCSS(&buf, styles.Get(name)); err != nil {
		return ""
	}
	return buf.String()
}

// Sanitize strips every tag from s, for plain-text fields such as comments.
func Sanitize(s string) string {
	return strictPolicy.Sanitize(s)
}

var strictPolicy = bluemonday.StrictPolicy()

// SafeURL validates a URL for use in an HTML attribute. Relative paths and
// http, https, mailto and tel URLs pass; anything else yields "".
func SafeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return val
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return val
	default:
		return ""
	}
}
