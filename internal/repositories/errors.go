package repositories

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors at the storage boundary. Services translate these into
// apperrors before they reach the transport layer.
var (
	ErrNotFound           = errors.New("record not found")
	ErrInterestExists     = errors.New("interest already exists for this gig and professional")
	ErrInterestNotPending = errors.New("interest is not pending")
	ErrGigAlreadyAssigned = errors.New("gig already has an accepted interest")
	ErrStatusConflict     = errors.New("status precondition failed")
)

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
