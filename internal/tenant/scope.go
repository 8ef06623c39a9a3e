// Package tenant scopes queries to a subsidiary. Employee numbers and form
// rules are isolated per subsidiary.
package tenant

import (
	"go-onboarding/internal/domain"

	"gorm.io/gorm"
)

// Scope filters by subsidiary. An empty subsidiary leaves the query
// unscoped.
func Scope(subsidiary domain.Subsidiary) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if subsidiary == "" {
			return db
		}
		return db.Where("subsidiary = ?", subsidiary)
	}
}
