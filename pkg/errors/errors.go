package errors

import "fmt"

// ErrorType classifies a failed fetch
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// FetchError is a transport or HTTP failure talking to a remote endpoint
type FetchError struct {
	Type    ErrorType
	URL     string
	Code    int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error (code %d) for %s: %s", e.Type, e.Code, e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// RemoteError is a well-formed error payload returned by a hosting API
type RemoteError struct {
	Service string
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: remote error %d: %s", e.Service, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: remote error: %s", e.Service, e.Message)
}

// WrongFileTypeError reports a response whose media type is not downloadable
type WrongFileTypeError struct {
	URL         string
	ContentType string
}

func (e *WrongFileTypeError) Error() string {
	return fmt.Sprintf("WRONG FILE TYPE: %s has type: %s!", e.URL, e.ContentType)
}

// AlreadyExistsError reports a destination path that is already on disk
type AlreadyExistsError struct {
	URL  string
	Path string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("URL [%s] already downloaded.", e.URL)
}

// StorageError is a failure writing a file to disk. Another download of the
// same bytes cannot fix it.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error type should be retried.
// Rate limit responses are not retried; pacing is a fixed delay.
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429:
		return false
	case 401, 403, 404:
		return false
	default:
		return statusCode >= 500
	}
}

// TypeForStatus maps an HTTP status code onto an ErrorType
func TypeForStatus(statusCode int) ErrorType {
	switch {
	case statusCode == 0:
		return ErrorTypeNetwork
	case statusCode == 404:
		return ErrorTypeNotFound
	case statusCode == 429:
		return ErrorTypeRateLimit
	case statusCode >= 500:
		return ErrorTypeServerError
	default:
		return ErrorTypeUnknown
	}
}
