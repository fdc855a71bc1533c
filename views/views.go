// Package views holds the default folio templates as templ components, so
// custom templ views can replace any of them.
package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter keeps the first write error so component bodies read top to
// bottom without an error check after every fragment.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(s string) {
	if hw.err == nil {
		_, hw.err = io.WriteString(hw.w, s)
	}
}

// text writes s escaped for element content and quoted attribute values.
func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

// url writes a sanitized, escaped URL for href and action attributes.
func (hw *htmlWriter) url(s string) {
	hw.raw(templ.EscapeString(string(templ.URL(s))))
}

func (hw *htmlWriter) render(ctx context.Context, c templ.Component) {
	if hw.err == nil && c != nil {
		hw.err = c.Render(ctx, hw.w)
	}
}

func component(fn func(ctx context.Context, hw *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		fn(ctx, hw)
		return hw.err
	})
}

func csrfInput(hw *htmlWriter, token string) {
	hw.raw(`<input type="hidden" name="_csrf" value="`)
	hw.text(token)
	hw.raw(`">`)
}

// layout wraps content in the shared page shell. head is optional.
func layout(site Site, meta PageMeta, head, content templ.Component) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
		hw.raw("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n<title>")
		if meta.Title != "" {
			hw.text(meta.Title)
			hw.raw(" | ")
		}
		hw.text(site.Name)
		hw.raw("</title>\n<meta name=\"description\" content=\"")
		if meta.Description != "" {
			hw.text(meta.Description)
		} else {
			hw.text(site.Description)
		}
		hw.raw("\">\n")
		if meta.URL != "" {
			hw.raw(`<link rel="canonical" href="`)
			hw.url(meta.URL)
			hw.raw("\">\n<meta property=\"og:url\" content=\"")
			hw.text(meta.URL)
			hw.raw("\">\n")
		}
		hw.raw(`<meta property="og:title" content="`)
		if meta.Title != "" {
			hw.text(meta.Title)
		} else {
			hw.text(site.Name)
		}
		hw.raw("\">\n<meta property=\"og:type\" content=\"")
		if meta.OGType != "" {
			hw.text(meta.OGType)
		} else {
			hw.raw("website")
		}
		hw.raw("\">\n<meta name=\"csrf-token\" content=\"")
		hw.text(site.CSRFToken)
		hw.raw("\">\n<link rel=\"alternate\" type=\"application/rss+xml\" title=\"")
		hw.text(site.Name)
		hw.raw("\" href=\"/feed.xml\">\n")
		hw.raw("<link rel=\"stylesheet\" href=\"/public/folio.css\">\n<link rel=\"stylesheet\" href=\"/public/chroma.css\">\n")
		hw.render(ctx, head)
		hw.raw("\n</head>\n<body>\n<header>\n<nav>\n<a class=\"brand\" href=\"/\">")
		hw.text(site.Name)
		hw.raw("</a>\n")
		if site.LoggedIn {
			hw.raw("<a href=\"/admin/\">Admin</a>\n<form method=\"post\" action=\"/logout/\">")
			csrfInput(hw, site.CSRFToken)
			hw.raw("<button type=\"submit\">Log out</button></form>\n")
		} else {
			hw.raw("<a href=\"/login/\">Log in</a>\n<a href=\"/register/\">Register</a>\n")
		}
		hw.raw("</nav>\n</header>\n<main>\n")
		hw.render(ctx, content)
		hw.raw("\n</main>\n<footer class=\"meta\">&copy; ")
		hw.text(site.Name)
		if site.Author != "" {
			hw.raw(" &middot; ")
			hw.text(site.Author)
		}
		hw.raw(" &middot; <a href=\"/feed.xml\">RSS</a></footer>\n</body>\n</html>\n")
	})
}

// jsonLD writes doc into a JSON-LD script tag. doc comes from json.Marshal,
// which escapes <, > and &.
func jsonLD(doc string) templ.Component {
	if doc == "" {
		return nil
	}
	return component(func(_ context.Context, hw *htmlWriter) {
		hw.raw(`<script type="application/ld+json">`)
		hw.raw(doc)
		hw.raw(`</script>`)
	})
}
