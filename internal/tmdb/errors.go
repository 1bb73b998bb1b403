package tmdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ConnectionErrorMessage is the message of errors raised before any response arrived.
const ConnectionErrorMessage = "Connection error"

// TransportError is a network-level failure: DNS, refused connection, timeout.
// No HTTP response was received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is the uniform error shape returned by every Client method.
// StatusCode is zero when the request never produced a response.
type APIError struct {
	StatusCode int
	Message    string
	Details    []string
	Title      string
	Err        error
}

func (e *APIError) Error() string {
	var b strings.Builder
	if e.Title != "" {
		b.WriteString(e.Title)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	for _, d := range e.Details {
		b.WriteString("; ")
		b.WriteString(d)
	}
	if e.Err != nil && len(e.Details) == 0 {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return e.Err }

// WithTitle returns a copy of the error carrying title.
func (e *APIError) WithTitle(title string) *APIError {
	c := *e
	c.Title = title
	c.Details = append([]string(nil), e.Details...)
	return &c
}

// IsTransport reports whether the error came from a failed connection.
func (e *APIError) IsTransport() bool {
	var te *TransportError
	return errors.As(e.Err, &te)
}

// AsAPIError extracts an *APIError from err. Errors of any other kind are
// wrapped so callers always receive the same shape.
func AsAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{Message: err.Error(), Err: err}
}

// IsNotFound reports whether err is an API response with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// statusBody is the error payload TMDB attaches to failed responses.
type statusBody struct {
	StatusMessage string `json:"status_message"`
	StatusCode    *int   `json:"status_code"`
}

// transportError normalizes a failure to obtain any response.
func transportError(err error) *APIError {
	return &APIError{
		Message: ConnectionErrorMessage,
		Err:     &TransportError{Err: err},
	}
}

// responseError normalizes a non-2xx response. A body that is not valid JSON
// produces an error without details.
func responseError(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("Fetch response code: %d", resp.StatusCode),
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var body statusBody
	if err := json.Unmarshal(data, &body); err != nil {
		return apiErr
	}

	if d := body.details(); d != "" {
		apiErr.Details = append(apiErr.Details, d)
	}
	return apiErr
}

func (b statusBody) details() string {
	switch {
	case b.StatusMessage != "" && b.StatusCode != nil:
		return fmt.Sprintf("%s (status code: %d)", b.StatusMessage, *b.StatusCode)
	case b.StatusMessage != "":
		return b.StatusMessage
	case b.StatusCode != nil:
		return fmt.Sprintf("API status code: %d", *b.StatusCode)
	}
	return ""
}
