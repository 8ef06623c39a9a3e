package onboardingerrors

import (
	"net/http"

	"go-onboarding/internal/shared/apperror"
)

// Reason codes are part of the HTTP contract; clients branch on them.
const (
	ReasonOnboardingNotFound       = "ONBOARDING_NOT_FOUND"
	ReasonInviteNotFound           = "INVITE_NOT_FOUND"
	ReasonInviteExpired            = "INVITE_EXPIRED"
	ReasonApproved                 = "APPROVED"
	ReasonTerminated               = "TERMINATED"
	ReasonSessionInvalid           = "SESSION_INVALID"
	ReasonOtpNotIssued             = "OTP_NOT_ISSUED"
	ReasonOtpLocked                = "OTP_LOCKED"
	ReasonOtpExpired               = "OTP_EXPIRED"
	ReasonOtpInvalid               = "OTP_INVALID"
	ReasonOtpMaxAttemptsExceeded   = "OTP_MAX_ATTEMPTS_EXCEEDED"
	ReasonOtpThrottled             = "OTP_THROTTLED"
	ReasonAlreadyApproved          = "ALREADY_APPROVED"
	ReasonAlreadyTerminated        = "ALREADY_TERMINATED"
	ReasonNotTerminated            = "NOT_TERMINATED"
	ReasonMethodNotDigital         = "METHOD_NOT_DIGITAL"
	ReasonMethodNotManual          = "METHOD_NOT_MANUAL"
	ReasonFormIncomplete           = "FORM_INCOMPLETE"
	ReasonFormReadOnly             = "FORM_READ_ONLY"
	ReasonInvalidFormPayload       = "INVALID_FORM_PAYLOAD"
	ReasonStatusNotInviteGenerated = "STATUS_NOT_INVITE_GENERATED"
	ReasonStatusNotSubmitted       = "STATUS_NOT_SUBMITTED_OR_RESUBMITTED"
	ReasonStatusNotEditable        = "STATUS_NOT_EDITABLE"
	ReasonStatusConflict           = "STATUS_CONFLICT"
	ReasonEmployeeNumberTaken      = "EMPLOYEE_NUMBER_TAKEN"
	ReasonEmailDeliveryFailed      = "EMAIL_DELIVERY_FAILED"
	ReasonInvalidOnboardingID      = "INVALID_ONBOARDING_ID"
	ReasonInvalidSubsidiary        = "INVALID_SUBSIDIARY"
	ReasonInvalidMethod            = "INVALID_METHOD"
	ReasonInvalidStatus            = "INVALID_STATUS"
)

var (
	// NotFound (404)
	ErrOnboardingNotFound = apperror.New(
		ReasonOnboardingNotFound,
		"Onboarding not found",
		http.StatusNotFound,
	)
	ErrInviteNotFound = apperror.New(
		ReasonInviteNotFound,
		"This onboarding link is not valid",
		http.StatusNotFound,
	)

	// Unauthenticated / session expired (401)
	ErrInviteExpired = apperror.New(
		ReasonInviteExpired,
		"This onboarding link has expired, please ask HR for a new one",
		http.StatusUnauthorized,
	)
	ErrApproved = apperror.New(
		ReasonApproved,
		"This onboarding has already been approved",
		http.StatusUnauthorized,
	)
	ErrTerminated = apperror.New(
		ReasonTerminated,
		"This onboarding is no longer active",
		http.StatusUnauthorized,
	)
	ErrSessionInvalid = apperror.New(
		ReasonSessionInvalid,
		"Your session is not valid, please open the onboarding link again",
		http.StatusUnauthorized,
	)

	// OTP challenge
	ErrOtpNotIssued = apperror.New(
		ReasonOtpNotIssued,
		"No verification code has been sent yet",
		http.StatusBadRequest,
	)
	ErrOtpExpired = apperror.New(
		ReasonOtpExpired,
		"The verification code has expired, please request a new one",
		http.StatusBadRequest,
	)
	ErrOtpInvalid = apperror.New(
		ReasonOtpInvalid,
		"The verification code is incorrect",
		http.StatusBadRequest,
	)
	ErrOtpLocked = apperror.New(
		ReasonOtpLocked,
		"Too many attempts, please try again later",
		http.StatusTooManyRequests,
	)
	ErrOtpMaxAttemptsExceeded = apperror.New(
		ReasonOtpMaxAttemptsExceeded,
		"Too many incorrect attempts, verification is locked for a while",
		http.StatusTooManyRequests,
	)
	ErrOtpThrottled = apperror.New(
		ReasonOtpThrottled,
		"A verification code was sent recently, please wait before requesting another",
		http.StatusTooManyRequests,
	)

	// Business-rule violations (400)
	ErrAlreadyApproved = apperror.New(
		ReasonAlreadyApproved,
		"Onboarding is already approved",
		http.StatusBadRequest,
	)
	ErrAlreadyTerminated = apperror.New(
		ReasonAlreadyTerminated,
		"Onboarding is terminated",
		http.StatusBadRequest,
	)
	ErrNotTerminated = apperror.New(
		ReasonNotTerminated,
		"Only terminated onboardings can be restored or deleted",
		http.StatusBadRequest,
	)
	ErrMethodNotDigital = apperror.New(
		ReasonMethodNotDigital,
		"This action is only available for digital onboardings",
		http.StatusBadRequest,
	)
	ErrMethodNotManual = apperror.New(
		ReasonMethodNotManual,
		"This action is only available for manual onboardings",
		http.StatusBadRequest,
	)
	ErrFormIncomplete = apperror.New(
		ReasonFormIncomplete,
		"The onboarding form is not complete",
		http.StatusBadRequest,
	)
	ErrFormReadOnly = apperror.New(
		ReasonFormReadOnly,
		"The onboarding form can no longer be edited",
		http.StatusBadRequest,
	)
	ErrInvalidFormPayload = apperror.New(
		ReasonInvalidFormPayload,
		"The form payload does not match the subsidiary form",
		http.StatusBadRequest,
	)
	ErrStatusNotInviteGenerated = apperror.New(
		ReasonStatusNotInviteGenerated,
		"Invite can only be resent while the onboarding is waiting for the employee",
		http.StatusBadRequest,
	)
	ErrStatusNotSubmitted = apperror.New(
		ReasonStatusNotSubmitted,
		"Onboarding must be submitted or resubmitted",
		http.StatusBadRequest,
	)
	ErrStatusNotEditable = apperror.New(
		ReasonStatusNotEditable,
		"Onboarding is not open for submission",
		http.StatusBadRequest,
	)
	ErrInvalidOnboardingID = apperror.New(
		ReasonInvalidOnboardingID,
		"Invalid onboarding ID",
		http.StatusBadRequest,
	)
	ErrInvalidSubsidiary = apperror.New(
		ReasonInvalidSubsidiary,
		"Invalid subsidiary",
		http.StatusBadRequest,
	)
	ErrInvalidMethod = apperror.New(
		ReasonInvalidMethod,
		"Invalid onboarding method",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		ReasonInvalidStatus,
		"Invalid onboarding status",
		http.StatusBadRequest,
	)

	// Conflict (409)
	ErrStatusConflict = apperror.New(
		ReasonStatusConflict,
		"Onboarding was changed by another request, reload and try again",
		http.StatusConflict,
	)
	ErrEmployeeNumberTaken = apperror.New(
		ReasonEmployeeNumberTaken,
		"Employee number already exists in this subsidiary",
		http.StatusConflict,
	)
)

// EmailDeliveryFailed wraps a mailer failure after compensation ran.
func EmailDeliveryFailed(err error) *apperror.AppError {
	return apperror.Wrap(
		err,
		ReasonEmailDeliveryFailed,
		"Email could not be sent, no changes were saved",
		http.StatusInternalServerError,
	)
}

func OtpInvalid(remainingAttempts int) *apperror.AppError {
	return ErrOtpInvalid.WithDetails(map[string]any{
		"remainingAttempts": remainingAttempts,
	})
}

func OtpThrottled(retryAfterSeconds int) *apperror.AppError {
	return ErrOtpThrottled.WithDetails(map[string]any{
		"retryAfterSeconds": retryAfterSeconds,
	})
}
