package gateway

import (
	"errors"
	"fmt"

	"github.com/wingmate-ai/wingmate/src/models"
)

// ErrorKind classifies gateway failures for programmatic handling.
type ErrorKind int

const (
	// KindConfiguration: missing credential, endpoint, or model.
	KindConfiguration ErrorKind = iota
	// KindUnreachable: network or API failure talking to a backend.
	KindUnreachable
	// KindEmptyResponse: the backend answered but produced no usable text.
	KindEmptyResponse
	// KindUnsupported: the active backend cannot serve this modality.
	KindUnsupported
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindUnreachable:
		return "unreachable"
	case KindEmptyResponse:
		return "empty response"
	case KindUnsupported:
		return "unsupported operation"
	default:
		return "unknown"
	}
}

// BackendError carries the backend name alongside the underlying failure, so
// callers can show which provider misbehaved without inspecting the message.
type BackendError struct {
	Backend string
	Kind    ErrorKind
	Err     error
}

func (e *BackendError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Backend, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Backend, e.Kind, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// configErr builds a configuration-kind error not tied to a specific call.
func configErr(backend, msg string) *BackendError {
	return &BackendError{Backend: backend, Kind: KindConfiguration, Err: errors.New(msg)}
}

// errUnsupported names the modality the active backend cannot serve.
func errUnsupported(what string) error {
	return fmt.Errorf("backend does not accept %s", what)
}

// wrapBackendErr classifies an engine failure.
func wrapBackendErr(backend string, err error) *BackendError {
	kind := KindUnreachable
	if errors.Is(err, models.ErrEmptyResponse) {
		kind = KindEmptyResponse
	}
	return &BackendError{Backend: backend, Kind: kind, Err: err}
}
