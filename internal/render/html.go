package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/davidbz/troubleshooter/internal/domain"
)

const contentTypeHTML = "text/html; charset=utf-8"

// html/template escapes every interpolated value for its context.
var documentTemplate = template.Must(template.New("troubleshoot").Parse(`<!DOCTYPE html>
<html>
    <head>
        <meta charset="utf-8">
        <title>Troubleshoot Response</title>
        <style>
            body { font-family: Arial, sans-serif; }
            .response, .recommendations { padding: 20px; background-color: #f0f0f0; border: 1px solid #ddd; }
            .recommendations { margin-top: 20px; }
        </style>
    </head>
    <body>
        <h2>Error Description</h2>
        <div class="response">{{.Description}}</div>
        <h2>Solution Recommendations</h2>
        <div class="recommendations"><ol>{{range .Recommendations}}<li>{{.}}</li>{{end}}</ol></div>
    </body>
</html>
`))

// HTML renders a self-contained HTML document.
type HTML struct {
	tmpl *template.Template
}

// NewHTML creates an HTML document renderer.
func NewHTML() *HTML {
	return &HTML{tmpl: documentTemplate}
}

// Render executes the document template.
func (h *HTML) Render(parsed *domain.ParsedTroubleshooting) (*domain.RenderedResponse, error) {
	if parsed == nil {
		return nil, errNilResult
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, parsed); err != nil {
		return nil, fmt.Errorf("failed to execute html template: %w", err)
	}

	return &domain.RenderedResponse{ContentType: contentTypeHTML, Body: buf.Bytes()}, nil
}

// Format returns domain.FormatHTML.
func (h *HTML) Format() domain.Format {
	return domain.FormatHTML
}
