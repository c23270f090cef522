package repository

import (
	"errors"

	"github.com/lib/pq"

	"github.com/yourorg/rentease/internal/domain"
)

// Postgres error codes we translate into domain errors
const (
	pqUniqueViolation    = "23505"
	pqForeignKeyMissing  = "23503"
	pqExclusionViolation = "23P01"
)

// translateConstraint maps constraint violations to typed domain errors.
// Returns nil if err is not a recognized constraint failure.
func translateConstraint(err error, resource string) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		return domain.AlreadyExists("%s already exists", resource)
	case pqExclusionViolation:
		// The active-lease date-range exclusion constraint; the race loser
		// of a concurrent create lands here
		return domain.BusinessRuleViolation("%s conflicts with an existing active lease period", resource)
	case pqForeignKeyMissing:
		return domain.Validation("%s references a missing record", resource)
	}
	return nil
}
