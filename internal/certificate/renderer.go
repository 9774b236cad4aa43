package certificate

import (
	"embed"
	"html/template"
	"strings"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// TemplateData carries the values the certificate template is populated with.
type TemplateData struct {
	FullName    string
	CourseTitle string
	IssuedOn    string
}

// Renderer renders a named HTML template with the given data. An empty
// result is valid output from the renderer's perspective; the caller decides
// whether emptiness is an error.
type Renderer interface {
	Render(templateName string, data TemplateData) (string, error)
}

// htmlRenderer implements Renderer over html/template with embedded templates.
type htmlRenderer struct {
	templates *template.Template
}

// NewHTMLRenderer creates a Renderer backed by the embedded template set.
func NewHTMLRenderer() (Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &htmlRenderer{templates: tmpl}, nil
}

func (r *htmlRenderer) Render(templateName string, data TemplateData) (string, error) {
	var sb strings.Builder
	if err := r.templates.ExecuteTemplate(&sb, templateName, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
