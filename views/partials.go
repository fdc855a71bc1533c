package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"
)

func tagLinks(hw *htmlWriter, tags []string) {
	hw.raw("<p>")
	for _, tag := range tags {
		hw.raw(`<a class="tag" href="`)
		hw.url(tagURL(tag))
		hw.raw(`">`)
		hw.text(tag)
		hw.raw("</a>")
	}
	hw.raw("</p>\n")
}

func postCard(hw *htmlWriter, class string, p PostView) {
	hw.raw(`<article class="`)
	hw.text(class)
	hw.raw("\">\n<h2><a href=\"")
	hw.url(p.Link)
	hw.raw(`">`)
	hw.text(p.Title)
	hw.raw("</a></h2>\n<p class=\"meta\">")
	hw.text(FormatDate(p.Date))
	hw.raw("</p>\n<p>")
	hw.text(p.Summary)
	hw.raw("</p>\n")
	tagLinks(hw, p.Tags)
	hw.raw("</article>\n")
}

// BlogSection renders only the post list, for partial page updates.
func BlogSection(p HomePage) templ.Component {
	return component(func(_ context.Context, hw *htmlWriter) {
		hw.raw("<section id=\"blog\">\n<p>")
		for _, tag := range p.Tags {
			hw.raw(`<a class="`)
			hw.text(TagClass(tag == p.ActiveTag))
			hw.raw(`" href="`)
			hw.url(tagURL(tag))
			hw.raw(`">`)
			hw.text(tag)
			hw.raw("</a>")
		}
		if p.ActiveTag != "" {
			hw.raw(` <a href="/">clear</a>`)
		}
		hw.raw("</p>\n")
		if p.Featured != nil {
			postCard(hw, "card featured", *p.Featured)
		}
		for _, post := range p.Posts {
			postCard(hw, "card", post)
		}
		if p.Featured == nil && len(p.Posts) == 0 {
			hw.raw("<p class=\"meta\">No posts yet.</p>\n")
		}
		hw.raw("</section>\n")
	})
}

// Comments renders the comment widget alone, returned after a comment is posted.
func Comments(c CommentsPartial) templ.Component {
	return component(func(_ context.Context, hw *htmlWriter) {
		hw.raw("<section id=\"comments\" class=\"card\">\n<h2>Comments (")
		hw.raw(strconv.Itoa(len(c.Comments)))
		hw.raw(")</h2>\n")
		for _, cm := range c.Comments {
			hw.raw("<div class=\"comment\">\n<span class=\"avatar\">")
			hw.text(cm.Initials)
			hw.raw("</span>\n<div><p><strong>")
			hw.text(cm.Author)
			hw.raw(`</strong> <span class="meta">`)
			hw.text(cm.Posted)
			hw.raw("</span></p><p>")
			hw.text(cm.Text)
			hw.raw("</p></div>\n</div>\n")
		}
		if len(c.Comments) == 0 {
			hw.raw("<p class=\"meta\">Be the first to comment!</p>\n")
		}
		if c.Error != "" {
			hw.raw(`<p class="error">`)
			hw.text(c.Error)
			hw.raw("</p>\n")
		}
		hw.raw(`<form class="stack" method="post" action="`)
		hw.url("/blog/" + PathEscape(c.PostID) + "/comments/")
		hw.raw("\">\n")
		csrfInput(hw, c.CSRFToken)
		hw.raw("\n<input type=\"text\" name=\"name\" placeholder=\"Your Name\" aria-label=\"Your Name\" required>\n")
		hw.raw("<textarea name=\"text\" rows=\"3\" placeholder=\"Write your comment here...\" aria-label=\"Comment text\" maxlength=\"2000\" required></textarea>\n")
		hw.raw("<button type=\"submit\">Submit Comment</button>\n</form>\n</section>\n")
	})
}

// AdminFormPartial renders the editor alone, swapped in when a post is picked.
func AdminFormPartial(f AdminForm) templ.Component {
	return component(func(_ context.Context, hw *htmlWriter) {
		hw.raw("<section id=\"editor\" class=\"card\">\n<h2>")
		if f.ID != "" {
			hw.raw("Edit post")
		} else {
			hw.raw("New post")
		}
		hw.raw("</h2>\n<form class=\"stack\" method=\"post\" action=\"/admin/save/\">\n")
		csrfInput(hw, f.CSRFToken)
		field := func(name, placeholder, value string, required bool) {
			hw.raw(`<input type="text" name="`)
			hw.raw(name)
			hw.raw(`" id="`)
			hw.raw(name)
			hw.raw(`" placeholder="`)
			hw.raw(placeholder)
			hw.raw(`" value="`)
			hw.text(value)
			hw.raw(`"`)
			if required {
				hw.raw(" required")
			}
			hw.raw(">\n")
		}
		hw.raw("\n<input type=\"hidden\" name=\"id\" value=\"")
		hw.text(f.ID)
		hw.raw("\">\n")
		field("title", "Title", f.Title, true)
		field("summary", "Summary", f.Summary, false)
		hw.raw(`<textarea class="code" name="content" id="content" placeholder="Markdown content">`)
		hw.text(f.Content)
		hw.raw("</textarea>\n")
		hw.raw("<div id=\"preview\" class=\"content\" aria-live=\"polite\"></div>\n")
		field("tags", "Comma-separated tags", f.Tags, false)
		if f.ID != "" {
			hw.raw(`<input type="text" name="date" value="`)
			hw.text(f.Date)
			hw.raw("\" pattern=\"\\d{4}-\\d{2}-\\d{2}\">\n")
		}
		if f.AIEnabled {
			hw.raw("<div>\n<button type=\"button\" id=\"suggest-tags\">Suggest tags</button>\n")
			hw.raw("<input type=\"text\" id=\"image-prompt\" placeholder=\"Describe an image\">\n")
			hw.raw("<button type=\"button\" id=\"generate-image\">Generate image</button>\n")
			hw.raw("<p class=\"error\" id=\"ai-error\" hidden></p>\n<img id=\"generated-image\" alt=\"\" hidden>\n</div>\n")
		}
		hw.raw(`<button type="submit">`)
		if f.ID != "" {
			hw.raw("Update")
		} else {
			hw.raw("Create")
		}
		hw.raw("</button>\n</form>\n</section>\n")
	})
}
