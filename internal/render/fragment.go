package render

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/davidbz/troubleshooter/internal/domain"
)

// Fragment renders JSON whose recommendations are an escaped <ol> markup string.
type Fragment struct{}

// NewFragment creates a fragment renderer.
func NewFragment() *Fragment {
	return &Fragment{}
}

// Render builds the ordered-list fragment and marshals the payload.
func (f *Fragment) Render(parsed *domain.ParsedTroubleshooting) (*domain.RenderedResponse, error) {
	if parsed == nil {
		return nil, errNilResult
	}

	payload := fragmentPayload{
		ErrorDescription:        parsed.Description,
		SolutionRecommendations: orderedList(parsed.Recommendations),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &domain.RenderedResponse{ContentType: contentTypeJSON, Body: body}, nil
}

// Format returns domain.FormatFragment.
func (f *Fragment) Format() domain.Format {
	return domain.FormatFragment
}

type fragmentPayload struct {
	ErrorDescription        string `json:"error_description"`
	SolutionRecommendations string `json:"solution_recommendations"`
}

func orderedList(items []string) string {
	var b strings.Builder
	b.WriteString("<ol>")
	for _, item := range items {
		b.WriteString("<li>")
		b.WriteString(html.EscapeString(item))
		b.WriteString("</li>")
	}
	b.WriteString("</ol>")
	return b.String()
}
