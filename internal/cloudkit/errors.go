package cloudkit

import "fmt"

// ErrorCategory determines how a query failure should be treated by retry
// policies layered on top of the paginator.
type ErrorCategory int

const (
	// Recoverable failures may be retried: 5xx responses, 408/429, and
	// network-level errors.
	Recoverable ErrorCategory = iota

	// Irrecoverable failures should propagate immediately: 4xx client
	// errors other than 408/429.
	Irrecoverable
)

func (c ErrorCategory) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ClassifiedError wraps a query failure with categorization metadata.
type ClassifiedError struct {
	Category   ErrorCategory
	StatusCode int    // 0 for non-HTTP failures
	Body       string // response body, for diagnostics
	Underlying error
}

func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %v", e.Category, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %v", e.Category, e.Underlying)
}

func (e *ClassifiedError) Unwrap() error { return e.Underlying }

// IsIrrecoverable reports whether err is classified as not worth retrying.
func IsIrrecoverable(err error) bool {
	if classified, ok := err.(*ClassifiedError); ok {
		return classified.Category == Irrecoverable
	}
	return false
}

// NewHTTPError classifies a non-2xx query response.
func NewHTTPError(statusCode int, body, operation string) *ClassifiedError {
	return &ClassifiedError{
		Category:   categoryForStatus(statusCode),
		StatusCode: statusCode,
		Body:       body,
		Underlying: fmt.Errorf("%s failed: HTTP %d", operation, statusCode),
	}
}

// NewNetworkError classifies a transport-level failure. These are always
// recoverable since they may be transient.
func NewNetworkError(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Recoverable,
		Underlying: fmt.Errorf("%s network error: %w", operation, err),
	}
}

func categoryForStatus(statusCode int) ErrorCategory {
	switch {
	case statusCode >= 400 && statusCode < 500:
		switch statusCode {
		case 408, 429:
			return Recoverable
		default:
			return Irrecoverable
		}
	default:
		return Recoverable
	}
}
