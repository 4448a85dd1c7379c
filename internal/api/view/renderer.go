// Package view renders the HTML pages. Templates are embedded at build time;
// each page is parsed into its own set on top of the shared layout so pages
// can all define "content" without clashing.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

//go:embed templates
var templateFS embed.FS

// Template names, one per file under templates/pages.
const (
	TemplateLogin     = "login"
	TemplateRegister  = "register"
	TemplateLoading   = "loading"
	TemplateNotFound  = "not-found"
	TemplateError     = "error"
	TemplateDashboard = "dashboard"
	TemplateInventory = "inventory"
	TemplatePurchases = "purchases"
	TemplateSales     = "sales"
	TemplateStores    = "stores"
)

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"month": func(i int) string {
		if i < 0 || i > 11 {
			return ""
		}
		return time.Month(i + 1).String()[:3]
	},
	"initial": func(s string) string {
		s = strings.TrimSpace(s)
		if s == "" {
			return "?"
		}
		return strings.ToUpper(s[:1])
	},
}

// Renderer implements echo.Renderer.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every embedded template.
func NewRenderer() (*Renderer, error) {
	base, err := template.New("base").Funcs(funcs).ParseFS(templateFS, "templates/layout/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, f := range files {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout: %w", err)
		}
		if _, err := t.ParseFS(templateFS, f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		pages[strings.TrimSuffix(path.Base(f), ".html")] = t
	}

	return &Renderer{pages: pages}, nil
}

// Render executes the named page inside the layout.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}
