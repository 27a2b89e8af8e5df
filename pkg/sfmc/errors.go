package sfmc

import (
	"fmt"

	"github.com/mparkin/sfmc-go/pkg/config"
)

// ConfigurationError is re-exported so callers can handle every error kind
// produced by the client from a single package.
type ConfigurationError = config.ConfigurationError

// AuthenticationError indicates that the token exchange failed, or that a
// request was still unauthorized after one forced token refresh. It is not
// retried beyond the dispatcher's single re-authentication attempt.
type AuthenticationError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %v", e.Err)
	}
	return fmt.Sprintf("authentication failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// RequestError indicates a non-auth API failure: a 4xx/5xx response (carrying
// status code and raw body), a transport failure, or a timeout.
type RequestError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *RequestError) Unwrap() error { return e.Err }
