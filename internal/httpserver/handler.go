package httpserver

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/davidbz/troubleshooter/internal/domain"
	"github.com/davidbz/troubleshooter/internal/observability"
)

// Handler handles HTTP requests.
type Handler struct {
	service       *domain.TroubleshootService
	defaultFormat domain.Format
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(service *domain.TroubleshootService, defaultFormat domain.Format) *Handler {
	if defaultFormat == "" {
		defaultFormat = domain.FormatHTML
	}

	return &Handler{
		service:       service,
		defaultFormat: defaultFormat,
	}
}

// Outcome labels for requests rejected before they reach the pipeline.
const (
	unknownFormat            = "unknown"
	outcomeUnsupportedFormat = "unsupported_format"
	outcomeInvalidBody       = "invalid_body"
	outcomeBodyTooLarge      = "body_too_large"
)

// errorResponse is the JSON body of every non-200 troubleshoot response.
type errorResponse struct {
	Error         string      `json:"error"`
	MissingFields []string    `json:"missing_fields,omitempty"`
	Details       interface{} `json:"details,omitempty"`
}

// HandleTroubleshoot negotiates the format from the query string and Accept header.
func (h *Handler) HandleTroubleshoot(w http.ResponseWriter, r *http.Request) {
	h.troubleshoot(w, r, "")
}

// HandleTroubleshootJSON always answers with the JSON format.
func (h *Handler) HandleTroubleshootJSON(w http.ResponseWriter, r *http.Request) {
	h.troubleshoot(w, r, domain.FormatJSON)
}

// HandleTroubleshootHTML always answers with an HTML document.
func (h *Handler) HandleTroubleshootHTML(w http.ResponseWriter, r *http.Request) {
	h.troubleshoot(w, r, domain.FormatHTML)
}

func (h *Handler) troubleshoot(w http.ResponseWriter, r *http.Request, fixed domain.Format) {
	ctx := r.Context()

	// Early validation.
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	format := fixed
	if format == "" {
		var err error
		format, err = h.negotiateFormat(r)
		if err != nil {
			observability.ObserveRequest(unknownFormat, outcomeUnsupportedFormat)
			h.writeError(w, r, err)
			return
		}
	}

	// Inject format into context for downstream logging.
	ctx = observability.WithFormat(ctx, string(format))
	r = r.WithContext(ctx)

	report, err := decodeReport(w, r)
	if err != nil {
		observability.ObserveRequest(string(format), rejectionOutcome(err))
		h.writeError(w, r, err)
		return
	}

	logger := observability.FromContext(ctx)
	logger.Info("troubleshoot request received",
		observability.String("platform", report.Platform),
		observability.Strings("services", report.Services),
		observability.String("error_code", report.ErrorCode),
	)

	rendered, err := h.service.Troubleshoot(ctx, report, format)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	logger.Info("troubleshoot succeeded", observability.Int("bytes", len(rendered.Body)))

	w.Header().Set("Content-Type", rendered.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, writeErr := w.Write(rendered.Body); writeErr != nil {
		logger.Error("failed to write response", observability.Error(writeErr))
	}
}

// negotiateFormat picks the format from ?format=, then Accept, then the default.
func (h *Handler) negotiateFormat(r *http.Request) (domain.Format, error) {
	if name := r.URL.Query().Get("format"); name != "" {
		return domain.ParseFormat(name)
	}

	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}

		switch mediaType {
		case "application/json":
			return domain.FormatJSON, nil
		case "text/html":
			return domain.FormatHTML, nil
		}
	}

	return h.defaultFormat, nil
}

// writeError maps pipeline failures onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := observability.FromContext(r.Context())

	var (
		validationErr *domain.ValidationError
		upstreamErr   *domain.UpstreamError
		bodyErr       *bodyError
	)

	switch {
	case errors.Is(err, errBodyTooLarge):
		logger.Warn("request body too large", observability.Error(err))
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: errBodyTooLarge.Error(), Details: err.Error()})

	case errors.As(err, &bodyErr):
		logger.Warn("invalid request body", observability.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errInvalidBody.Error(), Details: bodyErr.details})

	case errors.As(err, &validationErr):
		logger.Warn("troubleshoot request rejected", observability.Strings("missing_fields", validationErr.Missing))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing required data", MissingFields: validationErr.Missing})

	case errors.Is(err, domain.ErrUnsupportedFormat):
		logger.Warn("unsupported format requested", observability.Error(err))
		writeJSON(w, http.StatusNotAcceptable, errorResponse{Error: domain.ErrUnsupportedFormat.Error(), Details: err.Error()})

	case errors.Is(err, domain.ErrTimeout):
		logger.Error("troubleshoot timed out", observability.Error(err))
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: domain.ErrTimeout.Error(), Details: err.Error()})

	case errors.As(err, &upstreamErr):
		logger.Error("llm provider returned an error",
			observability.Int("upstream_status", upstreamErr.StatusCode),
			observability.Error(err),
		)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: domain.ErrUpstream.Error(), Details: upstreamErr.Body})

	case errors.Is(err, domain.ErrMalformedCompletion), errors.Is(err, domain.ErrTransport):
		logger.Error("llm request failed", observability.Error(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: rootSentinel(err).Error(), Details: err.Error()})

	default:
		logger.Error("troubleshoot failed", observability.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func rejectionOutcome(err error) string {
	if errors.Is(err, errBodyTooLarge) {
		return outcomeBodyTooLarge
	}
	return outcomeInvalidBody
}

func rootSentinel(err error) error {
	if errors.Is(err, domain.ErrMalformedCompletion) {
		return domain.ErrMalformedCompletion
	}
	return domain.ErrTransport
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Already written status, can't change it, just log.
		return
	}
}
