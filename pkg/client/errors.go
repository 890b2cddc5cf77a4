package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

var (
	// ErrConfiguration is returned by New when the transport has no valid
	// base URL.
	ErrConfiguration = errors.New("API client is not configured with a base URL")

	// ErrCredentials is returned by New when the id or token is not a
	// non-empty hexadecimal string.
	ErrCredentials = errors.New("User credentials are invalid")

	// ErrTransport wraps failures where no response was received at all
	// (DNS, refused connections, timeouts, cancelled contexts).
	ErrTransport = errors.New("WIU API request failed")
)

const (
	msgBadAddress = "Requested address is missing or invalid"
	msgNoServers  = "No valid servers requested"
	msgNoTests    = "No valid tests requested"
	msgBadJobID   = "Job ID is invalid"
	msgRawNotText = "Raw request must be a string"
	msgRawNotJSON = "Failed to decode raw request JSON"

	apiErrorContext = "Bad response from the WIU API"
)

// ValidationError reports caller input rejected before any request was made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// APIError is returned when the WIU API answers with an error status.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Detail is the response body's "message" field, or the HTTP reason
	// phrase when the body has none. Non-string messages are rendered as
	// JSON.
	Detail string
}

func (e *APIError) Error() string {
	prefix := apiErrorContext
	if e.StatusCode != 0 {
		prefix += fmt.Sprintf(" (HTTP status %d)", e.StatusCode)
	}
	return prefix + ": " + e.Detail
}

func newAPIError(resp *resty.Response) *APIError {
	var body struct {
		Message any `json:"message"`
	}
	detail := reasonPhrase(resp)
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Message != nil {
		detail = formatMessage(body.Message)
	}
	return &APIError{StatusCode: resp.StatusCode(), Detail: detail}
}

func formatMessage(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// reasonPhrase extracts "Forbidden" from a "403 Forbidden" status line.
func reasonPhrase(resp *resty.Response) string {
	code := resp.StatusCode()
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status(), strconv.Itoa(code)))
	if reason == "" {
		reason = http.StatusText(code)
	}
	return reason
}
