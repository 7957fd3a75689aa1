package domain

import (
	"fmt"
	"strings"
)

// ErrorReport describes a cloud-platform error submitted for troubleshooting.
type ErrorReport struct {
	Platform    string   `json:"platform,omitempty"`
	Services    []string `json:"services,omitempty"`
	ErrorCode   string   `json:"errorCode,omitempty"`
	Runtime     string   `json:"runtime,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Prompt is the natural-language instruction sent to the LLM.
type Prompt string

// ParsedTroubleshooting is the structured form of a completion.
type ParsedTroubleshooting struct {
	Description     string   `json:"error_description"`
	Recommendations []string `json:"solution_recommendations"`
}

// RenderedResponse is a serialized troubleshooting result ready to be written to a caller.
type RenderedResponse struct {
	ContentType string
	Body        []byte
}

// Format selects the representation of a rendered response.
type Format string

const (
	// FormatJSON renders recommendations as a JSON array of strings.
	FormatJSON Format = "json"

	// FormatHTML renders a self-contained HTML document.
	FormatHTML Format = "html"

	// FormatFragment renders JSON whose recommendations are an escaped <ol> fragment.
	FormatFragment Format = "fragment"
)

// ParseFormat converts a user-supplied format name into a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatHTML, FormatFragment:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// ValidationMode selects which ErrorReport fields are required.
type ValidationMode string

const (
	// ValidationStrict requires platform, services and description.
	ValidationStrict ValidationMode = "strict"

	// ValidationLoose requires a description, or else platform and services.
	ValidationLoose ValidationMode = "loose"
)

// Stage is a step of the troubleshooting pipeline.
type Stage string

const (
	StageReceived    Stage = "received"
	StageValidated   Stage = "validated"
	StagePromptBuilt Stage = "prompt_built"
	StageAwaitingLLM Stage = "awaiting_llm"
	StageParsed      Stage = "parsed"
	StageRendered    Stage = "rendered"
	StageFailed      Stage = "failed"
)
