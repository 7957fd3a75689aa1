// Package render serializes parsed troubleshooting results into the
// representations returned to callers: a JSON payload, a self-contained HTML
// document, or JSON carrying a pre-rendered ordered-list fragment.
package render

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/davidbz/troubleshooter/internal/domain"
)

const contentTypeJSON = "application/json"

var errNilResult = errors.New("parsed result cannot be nil")

// JSON renders {"error_description", "solution_recommendations": [...]}.
type JSON struct{}

// NewJSON creates a JSON renderer.
func NewJSON() *JSON {
	return &JSON{}
}

// Render marshals the parsed result.
func (j *JSON) Render(parsed *domain.ParsedTroubleshooting) (*domain.RenderedResponse, error) {
	if parsed == nil {
		return nil, errNilResult
	}

	payload := jsonPayload{
		ErrorDescription:        parsed.Description,
		SolutionRecommendations: nonNil(parsed.Recommendations),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &domain.RenderedResponse{ContentType: contentTypeJSON, Body: body}, nil
}

// Format returns domain.FormatJSON.
func (j *JSON) Format() domain.Format {
	return domain.FormatJSON
}

type jsonPayload struct {
	ErrorDescription        string   `json:"error_description"`
	SolutionRecommendations []string `json:"solution_recommendations"`
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
