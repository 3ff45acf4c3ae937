// Package view renders resolved repository pages as HTML.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/NahomAnteneh/repo-browser/internal/page"
	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"bytes": func(size int64) string {
		if size < 0 {
			size = 0
		}
		return humanize.Bytes(uint64(size))
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("2006-01-02 15:04 UTC")
	},
}

// Renderer executes the page templates
type Renderer struct {
	pages    map[page.Kind]*template.Template
	notFound *template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[page.Kind]*template.Template)}
	for kind, file := range map[page.Kind]string{
		page.KindRoot:      "root.html",
		page.KindDirectory: "directory.html",
		page.KindFile:      "file.html",
	} {
		t, err := parse(file)
		if err != nil {
			return nil, err
		}
		r.pages[kind] = t
	}

	t, err := parse("notfound.html")
	if err != nil {
		return nil, err
	}
	r.notFound = t
	return r, nil
}

func parse(file string) (*template.Template, error) {
	t, err := template.New("layout").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
	}
	return t, nil
}

// Render writes the page for v. Output is buffered so a failing template writes nothing.
func (r *Renderer) Render(w io.Writer, v *page.View) error {
	t, ok := r.pages[v.Kind]
	if !ok {
		return fmt.Errorf("no template for page kind %q", v.Kind)
	}
	return execute(w, t, v)
}

// RenderNotFound writes the 404 page
func (r *Renderer) RenderNotFound(w io.Writer, nf *page.NotFoundError) error {
	return execute(w, r.notFound, nf)
}

func execute(w io.Writer, t *template.Template, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
