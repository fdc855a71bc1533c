package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"
)

func Home(p HomePage) templ.Component {
	content := component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw("<h1>")
		hw.text(p.Site.Name)
		hw.raw("</h1>\n")
		if p.Site.Description != "" {
			hw.raw(`<p class="meta">`)
			hw.text(p.Site.Description)
			hw.raw("</p>\n")
		}
		hw.render(ctx, BlogSection(p))
	})
	return layout(p.Site, p.Meta, jsonLD(p.JSONLD), content)
}

func Post(p PostPage) templ.Component {
	content := component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw("<article class=\"card\">\n<h1>")
		hw.text(p.Post.Title)
		hw.raw("</h1>\n<p class=\"meta\">Published on ")
		hw.text(FormatDate(p.Post.Date))
		hw.raw("</p>\n")
		tagLinks(hw, p.Post.Tags)
		hw.raw(`<div class="content">`)
		hw.render(ctx, templ.Raw(p.Post.HTML))
		hw.raw("</div>\n</article>\n")
		hw.render(ctx, Comments(p.Comments))
		if len(p.Related) > 0 {
			hw.raw("<section>\n<h2>Related posts</h2>\n")
			for _, r := range p.Related {
				postCard(hw, "card", r)
			}
			hw.raw("</section>\n")
		}
	})
	return layout(p.Site, p.Meta, jsonLD(p.JSONLD), content)
}

func authPage(p AuthPage, title, action string, fields func(hw *htmlWriter), footer string) templ.Component {
	content := component(func(_ context.Context, hw *htmlWriter) {
		hw.raw("<section class=\"card\">\n<h1>")
		hw.text(title)
		hw.raw("</h1>\n")
		if p.Error != "" {
			hw.raw(`<p class="error">`)
			hw.text(p.Error)
			hw.raw("</p>\n")
		}
		hw.raw(`<form class="stack" method="post" action="`)
		hw.url(action)
		hw.raw("\">\n")
		csrfInput(hw, p.Site.CSRFToken)
		hw.raw("\n")
		fields(hw)
		hw.raw(`<button type="submit">`)
		hw.text(title)
		hw.raw("</button>\n</form>\n")
		hw.raw(footer)
		hw.raw("\n</section>\n")
	})
	return layout(p.Site, p.Meta, nil, content)
}

func Login(p AuthPage) templ.Component {
	return authPage(p, "Log in", "/login/", func(hw *htmlWriter) {
		hw.raw(`<input type="text" name="username" placeholder="Username" value="`)
		hw.text(p.Username)
		hw.raw("\" autocomplete=\"username\" required>\n")
		hw.raw("<input type=\"password\" name=\"password\" placeholder=\"Password\" autocomplete=\"current-password\" required>\n")
	}, `<p class="meta">No account? <a href="/register/">Register</a></p>`)
}

func Register(p AuthPage) templ.Component {
	return authPage(p, "Register", "/register/", func(hw *htmlWriter) {
		hw.raw(`<input type="text" name="username" placeholder="Choose a username" value="`)
		hw.text(p.Username)
		hw.raw("\" autocomplete=\"username\" required>\n")
		hw.raw("<input type=\"password\" name=\"password\" placeholder=\"Create a password (min. 6 characters)\" autocomplete=\"new-password\" minlength=\"6\" required>\n")
		hw.raw("<input type=\"password\" name=\"confirm\" placeholder=\"Re-enter your password\" autocomplete=\"new-password\" required>\n")
	}, `<p class="meta">Already registered? <a href="/login/">Log in</a></p>`)
}

var adminScript = component(func(_ context.Context, hw *htmlWriter) {
	hw.raw(`<script src="/public/admin.js" defer></script>`)
})

func Admin(p AdminPage) templ.Component {
	content := component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw("<h1>Admin dashboard</h1>\n")
		if p.Message != "" {
			hw.raw(`<p class="flash">`)
			hw.text(p.Message)
			hw.raw("</p>\n")
		}
		hw.render(ctx, AdminFormPartial(p.Form))
		hw.raw("<section class=\"card\">\n<h2>Posts (")
		hw.raw(strconv.Itoa(len(p.Posts)))
		hw.raw(")</h2>\n<p><a href=\"/admin/\">New post</a></p>\n")
		for _, post := range p.Posts {
			hw.raw("<div class=\"comment\">\n<div>\n<p><a href=\"")
			hw.url("/admin/post/" + PathEscape(post.ID) + "/")
			hw.raw(`">`)
			hw.text(post.Title)
			hw.raw(`</a> <span class="meta">`)
			hw.text(post.Date)
			hw.raw("</span></p>\n<form method=\"post\" action=\"")
			hw.url("/admin/delete/" + PathEscape(post.ID) + "/")
			hw.raw("\">\n")
			csrfInput(hw, p.Site.CSRFToken)
			hw.raw("\n<button type=\"submit\">Delete</button>\n</form>\n</div>\n</div>\n")
		}
		if len(p.Posts) == 0 {
			hw.raw("<p class=\"meta\">No posts.</p>\n")
		}
		hw.raw("</section>\n")
	})
	return layout(p.Site, p.Meta, adminScript, content)
}

func messagePage(p ErrorPage, title, body string) templ.Component {
	content := component(func(_ context.Context, hw *htmlWriter) {
		hw.raw("<section class=\"card\">\n<h1>")
		hw.text(title)
		hw.raw("</h1>\n<p>")
		hw.text(body)
		hw.raw("</p>\n<p><a href=\"/\">Back to the blog</a></p>\n</section>\n")
	})
	return layout(p.Site, p.Meta, nil, content)
}

func NotFound(p ErrorPage) templ.Component {
	return messagePage(p, "Not found", "The page you are looking for does not exist or may have been removed.")
}

func ServerError(p ErrorPage) templ.Component {
	return messagePage(p, "Something went wrong", "The server could not complete the request. Please try again later.")
}
