package apperror

import "fmt"

type AppError struct {
	Code       string         // Machine-readable reason (e.g., OTP_LOCKED)
	Message    string         // User-friendly message
	HTTPStatus int            // HTTP status code
	Details    map[string]any // Optional structured details (e.g., remainingAttempts)
	Err        error          // Wrapped original error (optional)
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements errors.Unwrap interface for errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors by code so that sentinel vars keep working after
// WithDetails or Wrap produced a copy.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.HTTPStatus == t.HTTPStatus
}

// WithDetails returns a copy of the error carrying the given details.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// New creates a new AppError without wrapping
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        nil,
	}
}

// Wrap creates an AppError that wraps an existing error
func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}
