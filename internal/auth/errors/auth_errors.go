package autherrors

import (
	"net/http"

	"go-onboarding/internal/shared/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(
		"INVALID_CREDENTIALS",
		"Email or password is incorrect",
		http.StatusUnauthorized,
	)
	ErrInactiveUser = apperror.New(
		"USER_INACTIVE",
		"This account is disabled",
		http.StatusUnauthorized,
	)
	ErrInvalidToken = apperror.New(
		"INVALID_TOKEN",
		"Token is invalid",
		http.StatusUnauthorized,
	)
	ErrTokenExpired = apperror.New(
		"TOKEN_EXPIRED",
		"Token has expired",
		http.StatusUnauthorized,
	)
	ErrInvalidUserID = apperror.New(
		"INVALID_USER_ID",
		"Invalid user ID",
		http.StatusBadRequest,
	)
	ErrUserNotFound = apperror.New(
		"USER_NOT_FOUND",
		"User not found",
		http.StatusNotFound,
	)
	ErrEmailAlreadyRegistered = apperror.New(
		"EMAIL_ALREADY_REGISTERED",
		"Email is already registered",
		http.StatusConflict,
	)
	ErrInvalidRole = apperror.New(
		"INVALID_ROLE",
		"Role must be one of VIEWER, HR, ADMIN",
		http.StatusBadRequest,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)
)
