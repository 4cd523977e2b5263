package providers

import "fmt"

// ConfigError indicates an invalid provider configuration.
type ConfigError struct {
	Provider string
	Field    string
	Message  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %s: invalid %s: %s", e.Provider, e.Field, e.Message)
}

// APIError is a non-2xx response from a provider's API.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider %s: API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// ParseError indicates a response body that could not be decoded into the
// expected provider shape.
type ParseError struct {
	Provider string
	Cause    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %s: failed to parse response: %v", e.Provider, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
