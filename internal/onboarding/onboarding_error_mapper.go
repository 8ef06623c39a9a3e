package onboarding

import (
	"errors"
	"strings"

	"go-onboarding/internal/domain"
	onboardingerrors "go-onboarding/internal/onboarding/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const employeeNumberConstraint = "uq_onboarding_employee_number"

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return onboardingerrors.ErrOnboardingNotFound
	}
	if errors.Is(err, domain.ErrConcurrentUpdate) {
		return onboardingerrors.ErrStatusConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == employeeNumberConstraint {
		return onboardingerrors.ErrEmployeeNumberTaken
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, employeeNumberConstraint) {
		return onboardingerrors.ErrEmployeeNumberTaken
	}

	return err
}
