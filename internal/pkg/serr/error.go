package serr

import (
	"fmt"
	"net/http"
	"runtime/debug"
)

// Kind classifies a ServiceError for API consumers.
type Kind string

const (
	KindUnauthenticated Kind = "Unauthenticated"
	KindBadRequest      Kind = "BadRequest"
	KindNotFound        Kind = "NotFound"
	KindConflict        Kind = "Conflict"
	KindTooManyRequests Kind = "TooManyRequests"
	KindStorageFailure  Kind = "StorageFailure"
	KindInternal        Kind = "Internal"
)

// ServiceError is an error that knows how it should be presented to a client.
// Env carries diagnostic values that are logged but never sent; Fields are
// rendered into the response body next to the kind and message.
type ServiceError struct {
	Err        error
	Msg        string
	Kind       Kind
	StackTrace string
	StatusCode int
	Env        map[string]string
	Fields     map[string]any
}

func NewServiceError(err error, statusCode int, msg string, args ...any) *ServiceError {
	return &ServiceError{
		Err:        err,
		Msg:        fmt.Sprintf(msg, args...),
		Kind:       kindFromStatus(statusCode),
		StatusCode: statusCode,
		StackTrace: string(debug.Stack()),
		Env:        make(map[string]string),
		Fields:     make(map[string]any),
	}
}

func (e *ServiceError) Error() string {
	return e.Msg
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// WithKind overrides the kind derived from the status code.
func (e *ServiceError) WithKind(k Kind) *ServiceError {
	e.Kind = k
	return e
}

func kindFromStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthenticated
	case http.StatusBadRequest:
		return KindBadRequest
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusTooManyRequests:
		return KindTooManyRequests
	}

	return KindInternal
}
