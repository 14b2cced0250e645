package llmprovider

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
// These can be checked with errors.Is().
var (
	// ErrInvalidModel indicates the requested model is not supported by the provider.
	ErrInvalidModel = errors.New("llmprovider: invalid or unsupported model")

	// ErrNoModel indicates an invocation was attempted before a model was selected.
	ErrNoModel = errors.New("llmprovider: no model selected")

	// ErrInvalidAPIKey indicates the credentials are missing, malformed, or unauthorized.
	ErrInvalidAPIKey = errors.New("llmprovider: invalid credentials")

	// ErrRateLimited indicates the provider's rate limit has been exceeded.
	ErrRateLimited = errors.New("llmprovider: rate limit exceeded")

	// ErrInvalidRequest indicates the request parameters are invalid.
	ErrInvalidRequest = errors.New("llmprovider: invalid request")

	// ErrProviderUnavailable indicates the provider service is down or unreachable.
	ErrProviderUnavailable = errors.New("llmprovider: provider unavailable")

	// ErrTransport is wrapped by every failure of the round trip itself:
	// network errors and non-2xx responses from the remote service.
	ErrTransport = errors.New("llmprovider: transport error")

	// ErrMalformedResponse indicates the response body could not be parsed
	// into the expected structure.
	ErrMalformedResponse = errors.New("llmprovider: malformed response")

	// ErrMissingCompletion indicates the response parsed but carried no completion.
	// Providers never return it; it is exported for callers that want to treat
	// an empty result as a failure.
	ErrMissingCompletion = errors.New("llmprovider: response has no completion")
)

// Error codes carried by ProviderError.Code.
// Remote codes (e.g. "ThrottlingException") are passed through verbatim;
// these are used when the failure never reached the service.
const (
	ErrorCodeNetwork             = "NetworkError"
	ErrorCodeRateLimited         = "ThrottlingException"
	ErrorCodeProviderUnavailable = "ServiceUnavailableException"
	ErrorCodeUnknown             = "UnknownError"
)

// ModelError represents an error related to model validation or availability.
type ModelError struct {
	Model    string // The model that was requested
	Provider string // The provider name
	Reason   string // Human-readable explanation
	Err      error  // Wrapped error (usually ErrInvalidModel)
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model '%s' for provider '%s': %s (%v)", e.Model, e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("model '%s' for provider '%s': %s", e.Model, e.Provider, e.Reason)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// ValidationError represents an error in request parameter validation.
type ValidationError struct {
	Field  string // The parameter field that failed validation
	Value  any    // The invalid value
	Reason string // Human-readable explanation
	Err    error  // Wrapped error (usually ErrInvalidRequest)
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed for '%s' (value: %v): %s (%v)", e.Field, e.Value, e.Reason, e.Err)
	}
	return fmt.Sprintf("validation failed for '%s' (value: %v): %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ProviderError represents a transport-level failure talking to the provider API.
// It always matches ErrTransport, plus the sentinel in Err.
type ProviderError struct {
	Provider   string // The provider name
	Code       string // Remote error code (e.g. "ThrottlingException") or one of the ErrorCode constants
	StatusCode int    // HTTP status code, 0 when no response was received
	Message    string // Error message from provider
	Retryable  bool   // Informational; nothing in this module retries
	Err        error  // Wrapped sentinel error (ErrRateLimited, ErrProviderUnavailable, etc.)
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider '%s' error (status %d, %s): %s", e.Provider, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("provider '%s' error (%s): %s", e.Provider, e.Code, e.Message)
}

func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// ResponseError reports a response body that failed the schema check.
type ResponseError struct {
	Provider string
	Reason   string
	Body     []byte // Raw body, truncated for display
}

func (e *ResponseError) Error() string {
	body := e.Body
	if len(body) > 256 {
		body = body[:256]
	}
	return fmt.Sprintf("provider '%s' returned a malformed response: %s (body: %q)", e.Provider, e.Reason, body)
}

func (e *ResponseError) Unwrap() error {
	return ErrMalformedResponse
}

// IsRetryable checks if an error is potentially retryable.
// Returns true for rate limits, temporary unavailability, network errors, etc.
// It only classifies; callers decide whether to act on it.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	if errors.Is(err, ErrRateLimited) {
		return true
	}

	if errors.Is(err, ErrProviderUnavailable) {
		return true
	}

	return false
}

// IsInvalidRequest checks if an error indicates invalid request parameters.
// These errors are not retryable and require request changes.
func IsInvalidRequest(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrInvalidRequest) {
		return true
	}

	if errors.Is(err, ErrInvalidModel) {
		return true
	}

	if errors.Is(err, ErrNoModel) {
		return true
	}

	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsAuthError checks if an error is related to authentication.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrInvalidAPIKey) {
		return true
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		// HTTP 401/403 indicate auth issues
		return providerErr.StatusCode == 401 || providerErr.StatusCode == 403
	}

	return false
}

// IsTransportError reports whether err came from the network round trip.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport)
}
