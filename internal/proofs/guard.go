package proofs

import (
	"time"

	pkgerrors "github.com/dromero-dev/casagrande-backend/pkg/errors"
)

// ErrAlreadyDecided is the terminal-verdict guard shared by every decidable
// subject: the first decision wins, any later one conflicts.
func ErrAlreadyDecided(subject string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeConflict, "subject has already been decided").
		WithDetails(map[string]any{"subject": subject})
}

// InactivityExpired reports whether a timeboxed subject ran out its payment
// window with no proof submitted after entering the timeboxed state. Both the
// lazy read-path check and the cron sweep call this with identical outcomes.
func InactivityExpired(timeboxedAt, lastProofAt, deadline *time.Time, now time.Time) bool {
	if timeboxedAt == nil || deadline == nil {
		return false
	}
	if !now.After(*deadline) {
		return false
	}
	if lastProofAt != nil && lastProofAt.After(*timeboxedAt) {
		return false
	}
	return true
}
