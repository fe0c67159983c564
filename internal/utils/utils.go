package utils

import (
	"html/template"
	"strings"
	"time"
	"unicode/utf8"
)

// context key
type ctxKey string

const (
	CtxVisitorKey ctxKey = "visitor"
	CtxCSRFKey    ctxKey = "csrf_token"
)

// Linebreaks escapes s and turns blank-line separated blocks into
// paragraphs and single newlines into <br>.
func Linebreaks(s string) template.HTML {
	s = template.HTMLEscapeString(strings.ReplaceAll(s, "\r\n", "\n"))

	paragraphs := strings.Split(s, "\n\n")
	var result []string

	for _, p := range paragraphs {
		if p = strings.TrimSpace(p); p != "" {
			p = strings.ReplaceAll(p, "\n", "<br>")
			result = append(result, "<p>"+p+"</p>")
		}
	}

	return template.HTML(strings.Join(result, "\n"))
}

// Excerpt cuts s to at most n runes on a word boundary.
func Excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	runes := []rune(s)
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " .,;:") + "…"
}

// LongDate formats publish dates on the detail page.
func LongDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 January 2006")
}

// ShortDate formats dates on post cards.
func ShortDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}
