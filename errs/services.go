package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Blob storage and third-party API errors
var (
	ErrStorage             = errors.New("storage operation failed")
	ErrUpstream            = errors.New("upstream service error")
	ErrServiceUnavailable  = errors.New("service unavailable")
	ErrConfigMissing       = errors.New("configuration missing")
	ErrNotificationFailure = errors.New("notification failed")
)

func NewStorageError(operation string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrStorage,
		Details:    fmt.Sprintf("Blob storage failed during %s", operation),
		Cause:      cause,
	}
}

func NewUpstreamError(service string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrUpstream,
		Details:    fmt.Sprintf("%s request failed", service),
		Cause:      cause,
	}
}

func NewServiceUnavailableError(service string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrServiceUnavailable,
		Details:    fmt.Sprintf("%s is not configured", service),
	}
}

func NewConfigMissingError(key string) error {
	return fmt.Errorf("%w: %s", ErrConfigMissing, key)
}
