package scan

import (
	"strings"
)

// Query is an Evernote search grammar query built from a title filter,
// optional tags and free text, and a creation date window.
type Query struct {
	TitleFilter string
	Tags        []string
	Words       string
	Window      Window
}

// String renders the query. Empty parts are left out.
func (q Query) String() string {
	parts := make([]string, 0, 3+len(q.Tags))
	if q.TitleFilter != "" {
		parts = append(parts, "intitle:"+quoteTerm(q.TitleFilter))
	}
	for _, tag := range q.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			parts = append(parts, "tag:"+quoteTerm(tag))
		}
	}
	if w := strings.TrimSpace(q.Words); w != "" {
		parts = append(parts, w)
	}
	if !q.Window.From.IsZero() {
		parts = append(parts, q.Window.Clause())
	}
	return strings.Join(parts, " ")
}

// quoteTerm wraps terms containing whitespace in double quotes.
func quoteTerm(s string) string {
	if strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}
