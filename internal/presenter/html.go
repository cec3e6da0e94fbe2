package presenter

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/page.html
var templateFS embed.FS

// PageTitle is the heading of the lookup page.
const PageTitle = "🚇 서울 지하철 역별 편의 정보 통합 뷰어"

// QueryPrompt labels the station input.
const QueryPrompt = "역 이름을 입력하세요:"

// Page is the data rendered by the HTML template. Report is nil until a query
// has been submitted; Error holds a failure to load data.
type Page struct {
	Title  string
	Prompt string
	Query  string
	Report *Report
	Error  string
}

// Renderer renders Pages to HTML.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded page template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("page.html").ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes p as a complete HTML document. Output is buffered so a
// template failure never leaves a half-written page.
func (r *Renderer) Render(w io.Writer, p Page) error {
	if p.Title == "" {
		p.Title = PageTitle
	}
	if p.Prompt == "" {
		p.Prompt = QueryPrompt
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, p); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
