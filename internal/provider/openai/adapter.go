// Package openai provides the domain.LLMClient backed by the official OpenAI SDK.
// Non-success statuses become *domain.UpstreamError carrying the raw error body.
// Any other failure to get a response is domain.ErrTimeout or domain.ErrTransport.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/troubleshooter/internal/domain"
	"github.com/davidbz/troubleshooter/internal/observability"
)

// Temperature favors factual, repeatable answers over creative variation.
const Temperature = 0.3

const defaultModel = "gpt-3.5-turbo"

// maxErrorBodyBytes caps how much of a non-JSON error body is kept.
const maxErrorBodyBytes = 64 << 10

// responseParseMarker prefixes SDK errors raised while decoding a 2xx body.
const responseParseMarker = "error parsing response json"

// Client implements the domain.LLMClient interface for OpenAI.
type Client struct {
	client openai.Client
	model  string
}

// NewClient creates a new OpenAI completion client.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		// Only transient failures (connection errors, 408, 409, 429, 5xx) are retried by the SDK.
		option.WithMaxRetries(max(config.MaxRetries, 0)),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(config.Timeout)*time.Second))
	}

	model := config.Model
	if model == "" {
		model = defaultModel
	}

	return &Client{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Complete sends the prompt as a single-turn chat request and returns the first choice's text.
func (c *Client) Complete(ctx context.Context, prompt domain.Prompt) (string, error) {
	ctx = observability.WithModel(ctx, c.model)
	logger := observability.FromContext(ctx)
	logger.Debug("calling OpenAI API", observability.Int("prompt_length", len(prompt)))

	resp, err := c.client.Chat.Completions.New(ctx, c.toSDKParams(prompt))
	if err != nil {
		mapped := c.mapError(ctx, err)
		logger.Error("OpenAI API call failed", observability.Error(mapped))
		return "", mapped
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response %s has no choices", domain.ErrMalformedCompletion, resp.ID)
	}

	choice := resp.Choices[0]
	logger.Debug("OpenAI API call succeeded",
		observability.Int("prompt_tokens", int(resp.Usage.PromptTokens)),
		observability.Int("completion_tokens", int(resp.Usage.CompletionTokens)),
		observability.String("finish_reason", string(choice.FinishReason)),
	)

	if refusal := strings.TrimSpace(choice.Message.Refusal); refusal != "" {
		return "", fmt.Errorf("%w: model refused: %s", domain.ErrMalformedCompletion, refusal)
	}

	if !choice.Message.JSON.Content.Valid() || strings.TrimSpace(choice.Message.Content) == "" {
		return "", fmt.Errorf("%w: response %s has no message content", domain.ErrMalformedCompletion, resp.ID)
	}

	return choice.Message.Content, nil
}

// Model returns the chat model used for completions.
func (c *Client) Model() string {
	return c.model
}

// toSDKParams converts a prompt to SDK ChatCompletionNewParams.
func (c *Client) toSDKParams(prompt domain.Prompt) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(string(prompt)),
		},
		Temperature: openai.Float(Temperature),
	}
}

// mapError translates SDK errors into the domain taxonomy.
func (c *Client) mapError(ctx context.Context, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &domain.UpstreamError{StatusCode: apiErr.StatusCode, Body: errorBody(apiErr)}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}

	if isDecodeError(err) {
		return fmt.Errorf("%w: %w", domain.ErrMalformedCompletion, err)
	}

	return fmt.Errorf("%w: %w", domain.ErrTransport, err)
}

// errorBody returns the provider's raw error body. Proxies and compatible
// backends may answer with text or HTML, which RawJSON does not carry.
func errorBody(apiErr *openai.Error) string {
	if body := strings.TrimSpace(apiErr.RawJSON()); body != "" {
		return body
	}

	// The SDK restores the consumed body on the response it attaches to the error.
	if apiErr.Response != nil && apiErr.Response.Body != nil {
		raw, readErr := io.ReadAll(io.LimitReader(apiErr.Response.Body, maxErrorBodyBytes))
		if readErr == nil {
			if body := strings.TrimSpace(string(raw)); body != "" {
				return body
			}
		}
	}

	return apiErr.Error()
}

// isDecodeError reports whether a 2xx response body could not be decoded.
func isDecodeError(err error) bool {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)

	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		strings.Contains(err.Error(), responseParseMarker)
}
