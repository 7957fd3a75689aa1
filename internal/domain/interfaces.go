package domain

import "context"

// LLMClient sends a prompt to a language model backend.
type LLMClient interface {
	// Complete returns the raw completion text for the prompt.
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Renderer serializes a parsed troubleshooting result.
type Renderer interface {
	// Render produces the representation of parsed.
	Render(parsed *ParsedTroubleshooting) (*RenderedResponse, error)

	// Format returns the format this renderer produces.
	Format() Format
}

// RendererRegistry resolves renderers by format.
type RendererRegistry interface {
	// Register adds a renderer to the registry.
	Register(renderer Renderer) error

	// Get retrieves the renderer for a format.
	Get(format Format) (Renderer, error)

	// Formats returns all registered formats.
	Formats() []Format
}

// EventPublisher publishes events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}
