package errors

import "fmt"

// ErrorCode represents a timetra error code.
type ErrorCode string

const (
	ErrParse              ErrorCode = "PARSE_ERROR"         // 400
	ErrInvalidRange       ErrorCode = "INVALID_RANGE"       // 400
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrAmbiguousOverlap   ErrorCode = "AMBIGUOUS_OVERLAP"   // 409
	ErrWouldReplace       ErrorCode = "WOULD_REPLACE"       // 409
	ErrAborted            ErrorCode = "ABORTED"             // 409 (user declined a destructive mutation)
	ErrStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE" // 503
	ErrInternal           ErrorCode = "INTERNAL"            // 500
)

// TimetraError represents a structured error with code, status, and details.
type TimetraError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TimetraError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewParse creates a 400 error for a malformed time/duration/bound token.
func NewParse(input, reason string) *TimetraError {
	return &TimetraError{
		Code:    ErrParse,
		Status:  400,
		Message: fmt.Sprintf("could not parse %q: %s", input, reason),
		Details: map[string]any{"input": input},
	}
}

// NewInvalidRange creates a 400 error for an empty or inverted interval.
func NewInvalidRange(msg string) *TimetraError {
	return &TimetraError{
		Code:    ErrInvalidRange,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TimetraError {
	return &TimetraError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a fact cannot be found.
func NewNotFound(identifier string) *TimetraError {
	return &TimetraError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("fact not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewAmbiguousOverlap creates a 409 error when more than one fact conflicts
// with the interval being logged. The engine refuses to guess which one to
// truncate.
func NewAmbiguousOverlap(count int) *TimetraError {
	return &TimetraError{
		Code:    ErrAmbiguousOverlap,
		Status:  409,
		Message: fmt.Sprintf("too many overlapping facts: %d", count),
		Details: map[string]any{"overlapping": count},
	}
}

// NewWouldReplace creates a 409 error when the new interval would engulf or
// precede the sole conflicting fact entirely.
func NewWouldReplace(activity string) *TimetraError {
	return &TimetraError{
		Code:    ErrWouldReplace,
		Status:  409,
		Message: fmt.Sprintf("new fact would replace the older fact %q", activity),
		Details: map[string]any{"activity": activity},
	}
}

// NewAborted creates a 409 error for a declined confirmation.
func NewAborted() *TimetraError {
	return &TimetraError{
		Code:    ErrAborted,
		Status:  409,
		Message: "operation cancelled",
	}
}

// NewStorageUnavailable creates a 503 error when the storage backend cannot
// be reached or is not configured.
func NewStorageUnavailable(reason string) *TimetraError {
	return &TimetraError{
		Code:    ErrStorageUnavailable,
		Status:  503,
		Message: fmt.Sprintf("storage unavailable: %s", reason),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *TimetraError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &TimetraError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a TimetraError with the given code.
func Is(err error, code ErrorCode) bool {
	if tErr, ok := err.(*TimetraError); ok {
		return tErr.Code == code
	}
	return false
}
