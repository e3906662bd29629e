package types

import "github.com/m-mizutani/goerr/v2"

// FailureKind classifies a tool failure. UnsupportedInput is a property of the
// user's query and is not retryable; ProviderUnavailable is a backing-service
// failure and is retryable; InvalidParameters means the caller violated the
// tool's parameter schema.
type FailureKind string

const (
	FailureUnsupportedInput    FailureKind = "unsupported_input"
	FailureProviderUnavailable FailureKind = "provider_unavailable"
	FailureInvalidParameters   FailureKind = "invalid_parameters"
)

// Validate checks if the FailureKind is a known value
func (k FailureKind) Validate() error {
	switch k {
	case FailureUnsupportedInput, FailureProviderUnavailable, FailureInvalidParameters:
		return nil
	}
	return goerr.New("invalid failure kind", goerr.V("kind", k))
}

// Retryable reports whether the failure may succeed on retry
func (k FailureKind) Retryable() bool {
	return k == FailureProviderUnavailable
}

// String returns the string representation of FailureKind
func (k FailureKind) String() string {
	return string(k)
}
