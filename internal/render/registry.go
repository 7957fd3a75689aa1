package render

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/davidbz/troubleshooter/internal/domain"
)

// Registry implements the RendererRegistry interface.
type Registry struct {
	mu        sync.RWMutex
	renderers map[domain.Format]domain.Renderer
}

// NewRegistry creates an empty renderer registry.
func NewRegistry() *Registry {
	return &Registry{
		mu:        sync.RWMutex{},
		renderers: make(map[domain.Format]domain.Renderer),
	}
}

// NewDefaultRegistry creates a registry holding the JSON, HTML and fragment renderers.
func NewDefaultRegistry() (*Registry, error) {
	reg := NewRegistry()

	for _, renderer := range []domain.Renderer{NewJSON(), NewHTML(), NewFragment()} {
		if err := reg.Register(renderer); err != nil {
			return nil, fmt.Errorf("failed to register %s renderer: %w", renderer.Format(), err)
		}
	}

	return reg, nil
}

// Register adds a renderer to the registry.
func (r *Registry) Register(renderer domain.Renderer) error {
	if renderer == nil {
		return errors.New("renderer cannot be nil")
	}

	format := renderer.Format()
	if format == "" {
		return errors.New("renderer format cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[format]; exists {
		return fmt.Errorf("renderer for format %s already registered", format)
	}

	r.renderers[format] = renderer

	return nil
}

// Get retrieves the renderer for a format.
func (r *Registry) Get(format domain.Format) (domain.Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, exists := r.renderers[format]
	if !exists {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}

	return renderer, nil
}

// Formats returns all registered formats in sorted order.
func (r *Registry) Formats() []domain.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]domain.Format, 0, len(r.renderers))
	for format := range r.renderers {
		formats = append(formats, format)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })

	return formats
}
