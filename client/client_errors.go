package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/academy-admin/internal/errors"
	"github.com/pkg/errors"
)

var (
	// ErrSessionEnded is matched by every error returned after the access layer cleared the session.
	ErrSessionEnded     = apperrors.ErrSessionEnded
	ErrRequestTooLarge  = apperrors.ErrRequestPayloadTooBig
	ErrResponseTooLarge = apperrors.ErrResponsePayloadTooBig
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
	RequestID  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// errorBody is the backend error envelope, { message, code }.
type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}

func newAPIError(resp *Response, requestID string) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: requestID}

	var body errorBody
	if err := json.Unmarshal(resp.Body, &body); err == nil {
		apiErr.Message = body.Message
		apiErr.Code = body.Code
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.ToLower(http.StatusText(resp.StatusCode))
	}
	if apiErr.Message == "" {
		apiErr.Message = "request failed"
	}
	return apiErr
}

// NetworkError is a failure to get any answer from the backend.
type NetworkError struct {
	Err     error
	Timeout bool
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("request timed out: %v", e.Err)
	}
	return fmt.Sprintf("cannot reach backend: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func newNetworkError(err error) *NetworkError {
	ne := &NetworkError{Err: err}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		ne.Timeout = true
	}
	return ne
}

// SessionEndedError is returned when a request ended the session. It matches
// ErrSessionEnded and unwraps to the cause.
type SessionEndedError struct {
	Cause error
}

func (e *SessionEndedError) Error() string {
	return fmt.Sprintf("session ended: %v", e.Cause)
}

func (e *SessionEndedError) Unwrap() []error {
	return []error{ErrSessionEnded, e.Cause}
}

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAuthentication
	KindAuthorization
	KindNetwork
	KindValidation
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Classify maps an error returned by the access layer onto the error taxonomy.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var apiErr *APIError
	hasAPIErr := errors.As(err, &apiErr)

	if errors.Is(err, ErrSessionEnded) {
		if hasAPIErr && apiErr.StatusCode == http.StatusForbidden {
			return KindAuthorization
		}
		return KindAuthentication
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	if hasAPIErr {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized:
			return KindAuthentication
		case apiErr.StatusCode == http.StatusForbidden:
			return KindAuthorization
		case apiErr.StatusCode >= 500:
			return KindServer
		case apiErr.StatusCode >= 400:
			return KindValidation
		}
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, apperrors.ErrMissingID),
		errors.Is(err, ErrRequestTooLarge):
		return KindValidation
	case errors.Is(err, apperrors.ErrAuthenticationNeeded):
		return KindAuthentication
	case errors.Is(err, ErrResponseTooLarge):
		return KindServer
	}
	return KindUnknown
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
