// Package web renders the pages and HTML fragments of the site.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/drsite/drsite-web/internal/forms"
	"github.com/drsite/drsite-web/internal/i18n"
	"github.com/drsite/drsite-web/internal/notify"
	"github.com/gin-gonic/gin/render"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the static assets, rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Renderer renders full pages for gin and fragments for page patches.
// It implements gin's render.HTMLRender, forms.Renderer and notify.Renderer.
type Renderer struct {
	base  *template.Template
	pages map[string]*template.Template
	tr    *i18n.Translator
}

var _ render.HTMLRender = (*Renderer)(nil)

// NewRenderer parses the embedded templates.
func NewRenderer(lang string) (*Renderer, error) {
	base, err := template.New("").ParseFS(templateFS, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base templates: %w", err)
	}

	r := &Renderer{
		base:  base,
		pages: make(map[string]*template.Template, len(Pages)),
		tr:    i18n.New(lang),
	}

	for _, p := range Pages {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone base templates: %w", err)
		}
		t, err := clone.ParseFS(templateFS, "templates/pages/"+p.Name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", p.Name, err)
		}
		r.pages[p.Name] = t
	}

	return r, nil
}

// Instance returns the gin renderer of a page. name is the page name.
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		// Unknown pages render through the base set and fail on the missing content block.
		t = r.base
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}

// Field renders a form control.
func (r *Renderer) Field(f *forms.Field) (string, error) {
	return r.fragment("field", f)
}

// FieldError renders the feedback element of a control.
func (r *Renderer) FieldError(f *forms.Field) (string, error) {
	return r.fragment("field_error", f)
}

// SubmitButton renders the submit control of a form.
func (r *Renderer) SubmitButton(b *forms.SubmitButton) (string, error) {
	return r.fragment("submit_button", b)
}

// NoticeContainer renders the empty notification container.
func (r *Renderer) NoticeContainer() (string, error) {
	return r.fragment("notice_container", nil)
}

// Notice renders a notification.
func (r *Renderer) Notice(n *notify.Notice) (string, error) {
	return r.fragment("notice", struct {
		Notice     *notify.Notice
		CloseLabel string
	}{n, r.tr.T(i18n.NoticeCloseLabel)})
}

// Form renders a complete form.
func (r *Renderer) Form(v FormView) (string, error) {
	return r.fragment("form", v)
}

// CookieBanner renders the consent banner.
func (r *Renderer) CookieBanner() (string, error) {
	return r.fragment("cookie_banner", nil)
}

func (r *Renderer) fragment(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.base.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}
