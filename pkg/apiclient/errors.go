package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNetwork covers timeouts and connectivity failures. These never
	// enter the refresh path.
	ErrNetwork = errors.New("network failure")
	// ErrUnauthenticated is a 401 that refresh cannot or did not help.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is a 403: authenticated but not allowed.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation is a 422; field details ride in Error.Errors.
	ErrValidation = errors.New("validation failed")
	// ErrSessionExpired is a 401 whose refresh attempt also failed. The only
	// error with a global side effect: the token store is cleared.
	ErrSessionExpired = errors.New("session expired")
)

const genericErrMessage = "An unexpected error occurred"

// Error is the normalized failure shape callers see instead of transport
// errors: {success:false, status, message, errors?}.
type Error struct {
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`

	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error: status=%d message=%q", e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func networkError(err error) *Error {
	return &Error{
		Status:  0,
		Message: genericErrMessage,
		cause:   fmt.Errorf("%w: %w", ErrNetwork, err),
	}
}

func sessionExpiredError(refreshErr error) *Error {
	msg := genericErrMessage
	var apiErr *Error
	if errors.As(refreshErr, &apiErr) && apiErr.Message != "" {
		msg = apiErr.Message
	}
	return &Error{
		Status:  401,
		Message: msg,
		cause:   fmt.Errorf("%w: %w", ErrSessionExpired, refreshErr),
	}
}

// normalizeFailure maps a non-2xx body onto the uniform error shape, falling
// back to the generic message when the body is not the expected envelope.
func normalizeFailure(status int, body []byte, cause error) *Error {
	out := &Error{Status: status, Message: genericErrMessage, cause: cause}
	var env Response[json.RawMessage]
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Message != "" {
			out.Message = env.Message
		}
		out.Errors = env.Errors
	}
	if out.cause == nil {
		switch status {
		case 401:
			out.cause = ErrUnauthenticated
		case 403:
			out.cause = ErrForbidden
		case 422:
			out.cause = ErrValidation
		}
	}
	return out
}
