package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrConnection marks fetch-level failures: the backend never answered.
var ErrConnection = errors.New("connection error")

// FieldError is one entry of a 422 response.
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type,omitempty"`
}

// Location joins the loc path the way the backend reports it ("body.servicos").
func (f FieldError) Location() string {
	if len(f.Loc) == 0 {
		return "unknown field"
	}
	parts := make([]string, 0, len(f.Loc))
	for _, p := range f.Loc {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ".")
}

// Error is a non-2xx backend response.
type Error struct {
	StatusCode int
	Detail     string
	Fields     []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		f := e.Fields[0]
		return fmt.Sprintf("validation error in field: %s. detail: %s", f.Location(), f.Msg)
	}
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// parseError builds an *Error from a response body. The backend sends
// {"detail": "..."} or, for 422, {"detail": [{loc,msg,type}, ...]}.
func parseError(status int, body []byte) *Error {
	e := &Error{StatusCode: status}
	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		e.Detail = strings.TrimSpace(string(body))
		return e
	}
	if len(envelope.Detail) > 0 {
		var text string
		if err := json.Unmarshal(envelope.Detail, &text); err == nil {
			e.Detail = text
		} else {
			var fields []FieldError
			if err := json.Unmarshal(envelope.Detail, &fields); err == nil {
				e.Fields = fields
			}
		}
	}
	if e.Detail == "" {
		e.Detail = envelope.Message
	}
	if e.Detail == "" {
		e.Detail = envelope.Error
	}
	return e
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsAuth reports a 401 or 403 response.
func IsAuth(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// IsUnauthorized reports a 401 response only.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsValidation reports a 422 response.
func IsValidation(err error) bool {
	return StatusCode(err) == http.StatusUnprocessableEntity
}

// IsConnectivity reports that the backend could not be reached.
func IsConnectivity(err error) bool {
	return errors.Is(err, ErrConnection)
}

// Message renders err for display. Backend details are shown verbatim;
// connectivity failures collapse to a generic message.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if IsConnectivity(err) {
		return "Connection error. Check that the API is running."
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Error()
		if apiErr.Detail == "" && len(apiErr.Fields) == 0 && fallback != "" {
			return fallback
		}
		return msg
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}
