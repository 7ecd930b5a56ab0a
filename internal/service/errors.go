package service

import (
	"errors"
	"fmt"
)

// Not-found errors deliberately merge "does not exist" with "outside the
// caller's scope" so cross-tenant existence never leaks.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrCampusNotFound = errors.New("campus not found")
	ErrTenantNotFound = errors.New("tenant not found")
)

// ErrRecordNotDeleted indicates a restore or purge was attempted on a
// record that is not soft-deleted.
var ErrRecordNotDeleted = errors.New("record is not soft-deleted")

// ErrPurgeConflict indicates the conditional delete lost a race against a
// concurrent restore.
var ErrPurgeConflict = errors.New("record changed concurrently; purge aborted")

// RetentionPeriodError reports that the FERPA retention floor blocks a
// permanent deletion. No caller role may override it.
type RetentionPeriodError struct {
	DaysRemaining int
}

func (e *RetentionPeriodError) Error() string {
	return fmt.Sprintf("retention period not met: %d days remaining", e.DaysRemaining)
}

// CampusReferencesError reports that live references block a campus
// deactivation.
type CampusReferencesError struct {
	Users   int64
	Records int64
}

func (e *CampusReferencesError) Error() string {
	return fmt.Sprintf("campus still referenced by %d users and %d records", e.Users, e.Records)
}
