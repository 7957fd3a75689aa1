package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/davidbz/troubleshooter/internal/domain"
)

const maxRequestBytes = 1 << 20

// requestSchemaJSON checks field types only; required fields are enforced by the pipeline.
const requestSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "platform":          {"type": ["string", "null"]},
    "services":          {"type": ["array", "null"], "items": {"type": "string"}},
    "service":           {"oneOf": [
                            {"type": ["string", "null"]},
                            {"type": "array", "items": {"type": "string"}}
                         ]},
    "aws_service":       {"type": ["string", "null"]},
    "errorCode":         {"type": ["string", "number", "null"]},
    "error_code":        {"type": ["string", "number", "null"]},
    "runtime":           {"type": ["string", "null"]},
    "description":       {"type": ["string", "null"]},
    "error_description": {"type": ["string", "null"]}
  }
}`

//nolint:gochecknoglobals // Compiled once at startup
var requestSchema = mustCompileSchema(requestSchemaJSON)

var (
	// errInvalidBody wraps malformed or ill-typed request bodies.
	errInvalidBody = errors.New("invalid request body")

	errBodyTooLarge = errors.New("request body too large")
)

// bodyError carries schema violations for the 400 response.
type bodyError struct {
	details []string
}

func (e *bodyError) Error() string {
	return fmt.Sprintf("%s: %s", errInvalidBody, strings.Join(e.details, "; "))
}

func (e *bodyError) Is(target error) bool {
	return target == errInvalidBody
}

// troubleshootRequest accepts the canonical schema and the legacy field names.
type troubleshootRequest struct {
	Platform         flexString `json:"platform"`
	Services         stringList `json:"services"`
	Service          stringList `json:"service"`
	AWSService       flexString `json:"aws_service"`
	ErrorCode        flexString `json:"errorCode"`
	LegacyErrorCode  flexString `json:"error_code"`
	Runtime          flexString `json:"runtime"`
	Description      flexString `json:"description"`
	ErrorDescription flexString `json:"error_description"`
}

// toReport maps the request onto the canonical error report. Canonical names win.
func (r *troubleshootRequest) toReport() *domain.ErrorReport {
	platform := string(r.Platform)
	services := []string(r.Services)

	if len(services) == 0 {
		services = r.Service
	}

	if len(services) == 0 && r.AWSService != "" {
		services = []string{string(r.AWSService)}
		if platform == "" {
			platform = "AWS"
		}
	}

	return &domain.ErrorReport{
		Platform:    platform,
		Services:    services,
		ErrorCode:   firstNonEmpty(string(r.ErrorCode), string(r.LegacyErrorCode)),
		Runtime:     string(r.Runtime),
		Description: firstNonEmpty(string(r.Description), string(r.ErrorDescription)),
	}
}

// decodeReport reads, schema-checks and maps a request body.
func decodeReport(w http.ResponseWriter, r *http.Request) (*domain.ErrorReport, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, maxErr.Limit)
		}
		return nil, &bodyError{details: []string{err.Error()}}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &bodyError{details: []string{"body is empty"}}
	}

	result, err := requestSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, &bodyError{details: []string{err.Error()}}
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, violation := range result.Errors() {
			details = append(details, violation.String())
		}
		return nil, &bodyError{details: details}
	}

	var req troubleshootRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &bodyError{details: []string{err.Error()}}
	}

	return req.toReport(), nil
}

// flexString decodes a JSON string, number or null into a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var value interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&value); err != nil {
		return err
	}

	switch v := value.(type) {
	case nil:
		*f = ""
	case string:
		*f = flexString(strings.TrimSpace(v))
	case json.Number:
		*f = flexString(v.String())
	default:
		return fmt.Errorf("expected string or number, got %T", value)
	}

	return nil
}

// stringList decodes a JSON array of strings, a single string or null.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	switch v := value.(type) {
	case nil:
		*s = nil
	case string:
		*s = splitServices(v)
	case []interface{}:
		list := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return fmt.Errorf("expected string item, got %T", item)
			}
			if str = strings.TrimSpace(str); str != "" {
				list = append(list, str)
			}
		}
		*s = list
	default:
		return fmt.Errorf("expected string or array, got %T", value)
	}

	return nil
}

// splitServices splits a comma-separated service list as typed into a web form.
func splitServices(value string) []string {
	var services []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			services = append(services, part)
		}
	}
	return services
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func mustCompileSchema(schema string) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid request schema: %v", err))
	}
	return compiled
}
