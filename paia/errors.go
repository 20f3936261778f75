package paia

import (
	"errors"
	"fmt"
)

// Common errors returned by the PAIA client.
var (
	// ErrInvalidCredentials is returned when username or password is empty.
	// No network call is made in that case.
	ErrInvalidCredentials = errors.New("username and password must not be empty")

	// ErrAuthenticationFailed indicates the server rejected the credentials.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrTokenExpired indicates a 401-coded error envelope; the session is
	// invalidated and the next call performs a single re-login.
	ErrTokenExpired = errors.New("access token expired")

	// ErrProtocol indicates an error envelope other than the cases above, or
	// a success response missing required fields.
	ErrProtocol = errors.New("unexpected PAIA response")

	// ErrTransport indicates a network-level failure from the HTTP client.
	ErrTransport = errors.New("PAIA transport failure")
)

// ErrMissingPatronID is the specific protocol failure where the server
// accepted the credentials but returned no patron identifier.
var ErrMissingPatronID = fmt.Errorf("%w: credentials accepted but no patron id returned", ErrProtocol)

// APIError is the uniform PAIA error envelope.
type APIError struct {
	Err         string `json:"error"`
	Description string `json:"error_description"`
	Code        int    `json:"code"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("PAIA error %q (code %d): %s", e.Err, e.Code, e.Description)
	}
	return fmt.Sprintf("PAIA error %q (code %d)", e.Err, e.Code)
}

// IsTokenExpired reports whether the envelope signals bearer token expiry.
func (e *APIError) IsTokenExpired() bool {
	return e.Code == 401
}

// IsAccessDenied reports whether the envelope signals rejected credentials.
func (e *APIError) IsAccessDenied() bool {
	return e.Err == "access_denied"
}

// Unwrap maps the envelope onto the error taxonomy so callers can use
// errors.Is against the package sentinels.
func (e *APIError) Unwrap() error {
	switch {
	case e.IsTokenExpired():
		return ErrTokenExpired
	case e.IsAccessDenied():
		return ErrAuthenticationFailed
	default:
		return ErrProtocol
	}
}

// Message returns the most descriptive text available from the envelope.
func (e *APIError) Message() string {
	if e.Description != "" {
		return e.Description
	}
	return e.Err
}
