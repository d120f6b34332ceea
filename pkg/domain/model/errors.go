package model

import (
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// Error kinds shared by every layer. Use errors.Is to classify.
var (
	ErrAuth                = goerr.New("authentication failed")
	ErrUpstream            = goerr.New("upstream request failed")
	ErrNotFound            = goerr.New("not found")
	ErrValidation          = goerr.New("validation failed")
	ErrUnsupportedProvider = goerr.New("unsupported provider")
	ErrBlockedByPolicy     = goerr.New("blocked by policy")
)

// Context keys for error values
const (
	ProviderKey     = "provider"
	ConnectionIDKey = "connection_id"
	DataSourceIDKey = "data_source_id"
	PipelineIDKey   = "pipeline_id"
	SourceIDKey     = "source_id"
	OwnerIDKey      = "owner_id"
)

// Machine readable error kinds exposed to HTTP clients
const (
	KindAuth                = "auth_error"
	KindUpstream            = "upstream_error"
	KindNotFound            = "not_found"
	KindValidation          = "validation_error"
	KindUnsupportedProvider = "unsupported_provider"
	KindBlockedByPolicy     = "blocked_by_policy"
	KindInternal            = "internal_error"
)

// ProviderError is a failure of a call against a provider API. It matches
// both its kind (ErrAuth or ErrUpstream) and its cause with errors.Is.
type ProviderError struct {
	Provider Provider
	Op       string
	Kind     error
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %s: %v", e.Provider, e.Op, e.Kind.Error(), e.Err)
}

func (e *ProviderError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// NewAuthError wraps a credential failure reported by provider
func NewAuthError(provider Provider, op string, err error) error {
	return &ProviderError{Provider: provider, Op: op, Kind: ErrAuth, Err: err}
}

// NewUpstreamError wraps a network or non-2xx failure reported by provider
func NewUpstreamError(provider Provider, op string, err error) error {
	return &ProviderError{Provider: provider, Op: op, Kind: ErrUpstream, Err: err}
}

// ErrorKind classifies err into one of the Kind* constants
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrBlockedByPolicy):
		return KindBlockedByPolicy
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrUnsupportedProvider):
		return KindUnsupportedProvider
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrAuth):
		return KindAuth
	case errors.Is(err, ErrUpstream):
		return KindUpstream
	default:
		return KindInternal
	}
}

func newValidationError(msg string, opts ...goerr.Option) error {
	return goerr.Wrap(ErrValidation, msg, opts...)
}
