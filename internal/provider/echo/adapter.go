// Package echo provides an offline LLM client that answers with the prompt's
// own detail lines as a numbered list. It makes no external calls and is used
// for local development and wiring checks.
package echo

import (
	"context"
	"fmt"
	"strings"

	"github.com/davidbz/troubleshooter/internal/domain"
	"github.com/davidbz/troubleshooter/internal/observability"
)

const closingQuestion = "Can you provide"

// Client implements domain.LLMClient without network access.
type Client struct{}

// NewClient creates a new echo client.
func NewClient() *Client {
	return &Client{}
}

// Complete echoes the first prompt line as the description and every
// following detail line as a numbered recommendation.
func (c *Client) Complete(ctx context.Context, prompt domain.Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}

	lines := promptLines(prompt)
	if len(lines) == 0 {
		return "", domain.ErrMalformedCompletion
	}

	var builder strings.Builder
	builder.WriteString("Echo: ")
	builder.WriteString(lines[0])
	for i, line := range lines[1:] {
		fmt.Fprintf(&builder, " %d. Review %s", i+1, line)
	}

	observability.FromContext(ctx).Debug("echo completed",
		observability.Int("recommendations", len(lines)-1))

	return builder.String(), nil
}

// promptLines returns the non-empty prompt lines, without the closing question.
func promptLines(prompt domain.Prompt) []string {
	var lines []string
	for _, line := range strings.Split(string(prompt), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, closingQuestion) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
