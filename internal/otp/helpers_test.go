package otp_test

import (
	"errors"
	"testing"

	"go-onboarding/internal/shared/apperror"

	"github.com/stretchr/testify/require"
)

func detail(t *testing.T, err error, key string) any {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	return appErr.Details[key]
}

func isErr(err, target error) bool {
	return errors.Is(err, target)
}
