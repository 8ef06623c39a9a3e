package apperror

// Codes shared across features. Lifecycle reason codes live with the
// onboarding errors.
const (
	// Client errors (4xx)
	CodeInvalidInput  = "INVALID_INPUT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeInvalidToken  = "INVALID_TOKEN"
	CodeInvalidUserID = "INVALID_USER_ID"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeRateLimited   = "RATE_LIMITED"
	// CodeProcessing answers a retried Idempotency-Key whose first request
	// has not finished yet.
	CodeProcessing = "PROCESSING"

	// Server errors (5xx)
	CodeInternalError = "INTERNAL_ERROR"
)
