package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorKindString(t *testing.T) {
	if KindTimeout.String() != "timeout" {
		t.Errorf("KindTimeout.String() = %q", KindTimeout.String())
	}
	if ErrorKind(42).String() != "ErrorKind(42)" {
		t.Errorf("unknown kind String() = %q", ErrorKind(42).String())
	}
}

func TestNewHTTPError(t *testing.T) {
	apiErr := newHTTPError(http.StatusConflict, []byte(`{"error_code":"resource_already_exists","message":"email already registered"}`), true)

	if apiErr.Message != "email already registered" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.ErrorCode() != "resource_already_exists" {
		t.Errorf("ErrorCode() = %q", apiErr.ErrorCode())
	}

	var data map[string]string
	if err := json.Unmarshal(apiErr.Data, &data); err != nil {
		t.Fatalf("Data is not the original payload: %v", err)
	}

	plain := newHTTPError(http.StatusBadGateway, []byte("bad gateway"), false)
	if plain.Data != nil {
		t.Errorf("expected no Data for a non-JSON body, got %s", plain.Data)
	}
	if plain.ErrorCode() != "" {
		t.Errorf("expected no error code, got %q", plain.ErrorCode())
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *ApiError
		want string
	}{
		{
			name: "network",
			err:  newNetworkError(errors.New("connection refused")),
			want: "Unable to connect. Please check your internet connection and try again.",
		},
		{
			name: "timeout",
			err:  newTimeoutError(errors.New("deadline"), 10000),
			want: "The request took too long. Please try again.",
		},
		{
			name: "login failure shows api message",
			err:  newHTTPError(http.StatusUnauthorized, []byte(`{"error_code":"authentication_error","message":"Incorrect email or password"}`), true),
			want: "Incorrect email or password",
		},
		{
			name: "expired token",
			err:  newHTTPError(http.StatusUnauthorized, []byte(`{"error_code":"access_token_expired","message":"token expired"}`), true),
			want: "Please log in to continue.",
		},
		{
			name: "forbidden",
			err:  newHTTPError(http.StatusForbidden, nil, false),
			want: "You don't have permission to access this resource.",
		},
		{
			name: "rate limited",
			err:  newHTTPError(http.StatusTooManyRequests, nil, false),
			want: "Too many requests. Please try again in a few moments.",
		},
		{
			name: "server error hides details",
			err:  newHTTPError(http.StatusInternalServerError, []byte(`{"message":"pq: relation does not exist"}`), true),
			want: "The service is temporarily unavailable. Please try again later.",
		},
		{
			name: "validation message",
			err:  newHTTPError(http.StatusBadRequest, []byte(`{"message":"quantity must be at least 1"}`), true),
			want: "quantity must be at least 1",
		},
		{
			name: "decode",
			err:  newDecodeError(errors.New("unexpected EOF"), http.StatusOK, "reading body"),
			want: "An error occurred. Please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.UserMessage(); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAsApiError(t *testing.T) {
	if AsApiError(nil) != nil {
		t.Error("expected nil for a nil error")
	}

	original := newHTTPError(http.StatusNotFound, []byte(`{"message":"Product not found"}`), true)
	wrapped := fmt.Errorf("loading product page: %w", original)
	if got := AsApiError(wrapped); got != original {
		t.Errorf("expected the wrapped *ApiError to be returned, got %+v", got)
	}

	other := errors.New("boom")
	got := AsApiError(other)
	if got.Kind != KindNetwork || !errors.Is(got, other) {
		t.Errorf("unexpected conversion %+v", got)
	}
}
