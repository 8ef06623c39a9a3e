package assets

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Store owns the uploaded documents of an onboarding. Upload and finalize
// live elsewhere; the lifecycle only needs to purge them on hard delete.
type Store interface {
	DeleteForOnboarding(ctx context.Context, onboardingID uuid.UUID) (int, error)
}

// Prefix is the key prefix every object of one onboarding lives under.
func Prefix(onboardingID uuid.UUID) string {
	return fmt.Sprintf("onboardings/%s/", onboardingID)
}

type noopStore struct{}

// NewNoopStore is used when no bucket is configured.
func NewNoopStore() Store {
	return noopStore{}
}

func (noopStore) DeleteForOnboarding(context.Context, uuid.UUID) (int, error) {
	return 0, nil
}
