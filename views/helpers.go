package views

import (
	"net/url"
	"time"
)

// PathEscape wraps url.PathEscape for use in templates.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	if active {
		return "tag active"
	}
	return "tag"
}

// FormatDate renders a YYYY-MM-DD date as "January 2, 2006". Unparseable
// dates are returned unchanged.
func FormatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("January 2, 2006")
}

func tagURL(tag string) string {
	return "/?tag=" + url.QueryEscape(tag)
}
