package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies why a request failed
type ErrorKind int

const (
	KindNetwork ErrorKind = iota // no HTTP response (DNS, connection refused, reset...)
	KindTimeout                  // the per-attempt deadline fired before a response arrived
	KindHTTP                     // the API responded with a non-2xx status
	KindDecode                   // a 2xx response body could not be decoded
	KindRequest                  // the request could not be built (bad url, unencodable body)
)

var errorKindNames = []string{"network", "timeout", "http", "decode", "request"}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKindNames[k]
}

// sentinel statuses used when the API never produced a response
const (
	StatusNetworkError = 0
	StatusTimeout      = http.StatusRequestTimeout
)

// ApiError is the only error type returned by the client.
//
// Status is the HTTP status returned by the API, StatusTimeout for a client-side abort or StatusNetworkError when no response was received.
// Data holds the error payload returned by the API, if any.
//
// ApiErrors are created by the client when a request is deemed to have failed and are not modified afterwards.
type ApiError struct {
	Message string
	Status  int
	Data    json.RawMessage
	Kind    ErrorKind
	err     error
}

func (e *ApiError) Error() string {
	return e.Message
}

func (e *ApiError) Unwrap() error {
	return e.err
}

// ErrorCode returns the error_code field from the API error payload, or an empty string
func (e *ApiError) ErrorCode() string {
	if len(e.Data) == 0 {
		return ""
	}
	var payload struct {
		ErrorCode string `json:"error_code"`
	}
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return ""
	}
	return payload.ErrorCode
}

// Temporary reports whether the failure was caused by the API being unavailable rather than by the request itself
func (e *ApiError) Temporary() bool {
	return shouldRetry(e)
}

// UserMessage returns a message that is safe to show to end users
func (e *ApiError) UserMessage() string {
	switch e.Kind {
	case KindNetwork:
		return "Unable to connect. Please check your internet connection and try again."
	case KindTimeout:
		return "The request took too long. Please try again."
	case KindDecode, KindRequest:
		return "An error occurred. Please try again later."
	}

	switch {
	case e.Status == http.StatusUnauthorized:
		if e.Message != "" && e.ErrorCode() == "authentication_error" {
			return e.Message
		}
		return "Please log in to continue."
	case e.Status == http.StatusForbidden:
		return "You don't have permission to access this resource."
	case e.Status == http.StatusTooManyRequests:
		return "Too many requests. Please try again in a few moments."
	case e.Status >= 500:
		return "The service is temporarily unavailable. Please try again later."
	case e.Status >= 400 && e.Message != "":
		// validation and not found messages from the API are written for end users
		return e.Message
	default:
		return "An error occurred. Please try again."
	}
}

// AsApiError returns err as an *ApiError, wrapping it if necessary
func AsApiError(err error) *ApiError {
	if err == nil {
		return nil
	}
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &ApiError{
		Message: err.Error(),
		Status:  StatusNetworkError,
		Kind:    KindNetwork,
		err:     err,
	}
}

func newNetworkError(err error) *ApiError {
	return &ApiError{
		Message: fmt.Sprintf("network error: %v", err),
		Status:  StatusNetworkError,
		Kind:    KindNetwork,
		err:     err,
	}
}

func newTimeoutError(err error, timeoutMs int64) *ApiError {
	return &ApiError{
		Message: fmt.Sprintf("request timed out after %dms", timeoutMs),
		Status:  StatusTimeout,
		Kind:    KindTimeout,
		err:     err,
	}
}

func newDecodeError(err error, status int, while string) *ApiError {
	return &ApiError{
		Message: fmt.Sprintf("could not decode response (%s): %v", while, err),
		Status:  status,
		Kind:    KindDecode,
		err:     err,
	}
}

func newRequestError(err error, while string) *ApiError {
	return &ApiError{
		Message: fmt.Sprintf("internal error: %v while %s", err, while),
		Status:  StatusNetworkError,
		Kind:    KindRequest,
		err:     err,
	}
}

// newHTTPError builds the error for a non-2xx response.
// The message is taken from the payload's message field when present.
func newHTTPError(status int, body []byte, isJSON bool) *ApiError {
	apiErr := &ApiError{
		Message: fmt.Sprintf("API request failed with status %d", status),
		Status:  status,
		Kind:    KindHTTP,
	}

	if !isJSON || !json.Valid(body) {
		return apiErr
	}

	apiErr.Data = json.RawMessage(body)

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		apiErr.Message = payload.Message
	}
	return apiErr
}
