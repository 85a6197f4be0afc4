// Package apperrors defines the sentinel errors shared across the service.
// Callers classify failures with errors.Is; wrapping sites add context with
// fmt.Errorf("...: %w", err).
package apperrors

import "errors"

var (
	// ErrNotFound indicates the identifier does not resolve to a record.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the acting principal lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition indicates a status change that is not allowed,
	// such as setting Resolved without going through verification.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrMissingBeforeImage indicates a resolution attempt on an issue
	// with no stored image to serve as the "before" evidence.
	ErrMissingBeforeImage = errors.New("issue has no before image")

	// ErrVerificationService indicates the external verification
	// collaborator failed or returned a malformed payload.
	ErrVerificationService = errors.New("verification service error")

	// ErrNotificationFailed indicates the external notification
	// collaborator failed.
	ErrNotificationFailed = errors.New("notification failed")

	// ErrValidation indicates missing or malformed input fields.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates a uniqueness violation or a lost
	// optimistic-concurrency race.
	ErrConflict = errors.New("conflict")
)
