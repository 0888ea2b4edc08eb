// Package web renders the server-side HTML pages.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"path"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page is the data every template receives. Body holds the page-specific view.
type Page struct {
	Title  string
	Path   string
	Viewer string
	Goto   string
	Body   any
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
	now   func() time.Time
}

// NewRenderer parses every templates/*.page.html together with the layout and partials.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template), now: time.Now}

	files, err := fs.Glob(templateFS, "templates/*.page.html")
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".page.html")
		t, err := template.New(name).Funcs(r.funcs()).ParseFS(templateFS,
			"templates/layout.html",
			"templates/*.partial.html",
			f,
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes page into a buffer and copies it to w only on success.
func (r *Renderer) Render(w io.Writer, page string, p *Page) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", p); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"ago":    func(t time.Time) string { return Ago(r.now(), t) },
		"domain": Domain,
		"plural": Plural,
		"add":    func(a, b int) int { return a + b },
	}
}

// Ago formats the time elapsed since t the way the site lists it: "5 minutes ago".
func Ago(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return Plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return Plural(int(d/time.Hour), "hour") + " ago"
	default:
		return Plural(int(d/(24*time.Hour)), "day") + " ago"
	}
}

// Plural returns "1 comment", "2 comments".
func Plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// Domain returns the host of rawURL without a leading "www.", or "" for text posts.
func Domain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
