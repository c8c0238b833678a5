package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/autoloc-sn/autoloc/internal/apperrors"
)

// APIError is the only error type returned by the client services.
//
// Status is the HTTP status of the response, 0 when no response was received
// and -1 when the request could not be built.
// Message is always suitable for display to the end user.
type APIError struct {
	Kind    apperrors.Kind  `json:"kind"`
	Message string          `json:"message"`
	Status  int             `json:"status"`
	Errors  json.RawMessage `json:"errors"` // raw error body sent by the server, nil if none
	Err     error           `json:"-"`      // underlying cause, for logging
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// LogMessage returns the technical details behind the user message
func (e *APIError) LogMessage() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.Status, e.Err)
	case len(e.Errors) > 0:
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Errors)
	default:
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Message)
	}
}

// NewNetworkError is used when a request was sent but no response arrived
func NewNetworkError(err error) *APIError {
	return &APIError{
		Kind:    apperrors.KindNetwork,
		Message: apperrors.MsgConnection,
		Status:  apperrors.StatusNoResponse,
		Err:     err,
	}
}

// NewRequestError is used when a request could not be built. Supply the error and a description of what was being done.
func NewRequestError(err error, while string) *APIError {
	message := apperrors.MsgGeneric
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	return &APIError{
		Kind:    apperrors.KindRequest,
		Message: message,
		Status:  apperrors.StatusNotSent,
		Err:     fmt.Errorf("%w while %s", err, while),
	}
}

// NewServerError creates an APIError from a non-2xx response.
//
// The message is taken from the body's detail, message or error field, then from
// the field-by-field validation errors, falling back to a message based on the status.
func NewServerError(status int, body []byte) *APIError {
	apiErr := &APIError{
		Kind:   apperrors.KindServer,
		Status: status,
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		apiErr.Errors = json.RawMessage(trimmed)
	}

	apiErr.Message = serverMessage(apiErr.Errors)
	if apiErr.Message == "" {
		apiErr.Message = apperrors.StatusMessage(status)
	}
	return apiErr
}

func serverMessage(body json.RawMessage) string {
	if len(body) == 0 {
		return ""
	}

	switch body[0] {
	case '"':
		var s string
		if err := json.Unmarshal(body, &s); err == nil {
			return s
		}
	case '{':
		var fields struct {
			Detail  any `json:"detail"`
			Message any `json:"message"`
			Error   any `json:"error"`
		}
		if err := json.Unmarshal(body, &fields); err == nil {
			for _, v := range []any{fields.Detail, fields.Message, fields.Error} {
				if s, ok := v.(string); ok && s != "" {
					return s
				}
			}
		}
		return FormatValidationErrors(body)
	case '[':
		return FormatValidationErrors(body)
	}
	return ""
}

// AsAPIError returns err as an *APIError.
// Errors that did not come from the client are treated as request construction failures.
func AsAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return NewRequestError(err, "calling the API")
}

// FormatValidationErrors flattens a field keyed validation error body into one line per field:
//
//	{"email": ["required", "invalid"], "nom": "too short"}
//
// becomes "email: required, invalid\nnom: too short".
// Fields are reported in the order they appear in the body, nested objects use dotted names.
func FormatValidationErrors(body []byte) string {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var lines []string
	if err := flattenValue(dec, "", &lines); err != nil {
		return apperrors.MsgValidation
	}
	return strings.Join(lines, "\n")
}

// flattenValue consumes one JSON value from dec, appending "field: text" lines
func flattenValue(dec *json.Decoder, field string, lines *[]string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return err
				}
				key, _ := keyTok.(string)
				if field != "" {
					key = field + "." + key
				}
				if err := flattenValue(dec, key, lines); err != nil {
					return err
				}
			}
			_, err := dec.Token() // closing }
			return err
		case '[':
			var messages []string
			for dec.More() {
				var item json.RawMessage
				if err := dec.Decode(&item); err != nil {
					return err
				}
				messages = append(messages, scalarText(item))
			}
			if _, err := dec.Token(); err != nil { // closing ]
				return err
			}
			appendLine(lines, field, strings.Join(messages, ", "))
			return nil
		}
	case string:
		appendLine(lines, field, t)
	case json.Number:
		appendLine(lines, field, t.String())
	case bool:
		appendLine(lines, field, fmt.Sprint(t))
	case nil:
		appendLine(lines, field, "null")
	}
	return nil
}

func appendLine(lines *[]string, field, text string) {
	if field == "" {
		*lines = append(*lines, text)
		return
	}
	*lines = append(*lines, field+": "+text)
}

// scalarText renders one element of an error list
func scalarText(item json.RawMessage) string {
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		return s
	}
	if item[0] == '{' {
		// DRF nested serializer errors in a list, e.g. {"non_field_errors": [...]}
		var nested []string
		if err := flattenValue(json.NewDecoder(bytes.NewReader(item)), "", &nested); err == nil {
			return strings.Join(nested, "; ")
		}
	}
	return string(item)
}

// drain reads the remainder of an error response body, bounded so a misbehaving server cannot exhaust memory
func drain(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxErrorBodySize))
}

const maxErrorBodySize = 1 << 20
