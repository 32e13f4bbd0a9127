package graphql

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoAPIKey     = errors.New("no API key configured; set SUCCESS_CO_API_KEY or call setApiKey")
	ErrInvalidQuery = errors.New("invalid GraphQL document")
	ErrDecode       = errors.New("unreadable GraphQL response")
)

// Error is one entry of a GraphQL errors array.
type Error struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// HTTPError is a non-2xx answer. Parsed reports whether the body was a JSON
// error document, in which case Messages holds its messages.
type HTTPError struct {
	StatusCode int
	Parsed     bool
	Messages   []string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Parsed && len(e.Messages) > 0 {
		return fmt.Sprintf("GraphQL HTTP %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
	}
	if e.Body != "" {
		return fmt.Sprintf("GraphQL HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("GraphQL HTTP %d", e.StatusCode)
}

// ResponseError is a 200 answer carrying an errors array. HasData reports
// whether partial data was decoded into the caller's value.
type ResponseError struct {
	Errors  []Error
	HasData bool
}

func (e *ResponseError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		msgs = append(msgs, ge.Message)
	}
	return "GraphQL error: " + strings.Join(msgs, "; ")
}

// IsHTTPStatus reports whether err is an HTTPError with the given status.
func IsHTTPStatus(err error, status int) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.StatusCode == status
}

// Partial reports whether err is a GraphQL error that still produced data.
func Partial(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.HasData
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var he *HTTPError
	var re *ResponseError
	switch {
	case errors.As(err, &he):
		return "http_error"
	case errors.As(err, &re):
		return "graphql_error"
	case errors.Is(err, ErrInvalidQuery), errors.Is(err, ErrNoAPIKey):
		return "invalid"
	default:
		return "transport_error"
	}
}
