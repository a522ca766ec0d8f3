package billing

import "errors"

var (
	ErrMissingExternalUserID = errors.New("external user id is required")
	ErrMissingEventID        = errors.New("event id is required")
	ErrMissingEventType      = errors.New("event type is required")
	ErrMissingIsPro          = errors.New("isPro flag is required for this event type")

	// ErrAccountNotFound is returned when no billing account exists for the
	// external user id. Upstream may safely redeliver later; the ordering
	// guard protects against replay once the account exists.
	ErrAccountNotFound = errors.New("billing account not found")

	// ErrAccountAlreadyExists is returned by account creation when the
	// external user id is already taken.
	ErrAccountAlreadyExists = errors.New("billing account already exists")

	// ErrVersionConflict is returned by the store when a conditional write
	// matched zero rows because the observed billing version is no longer
	// current.
	ErrVersionConflict = errors.New("billing version conflict")

	// ErrConcurrencyConflict is returned after the bounded retry budget is
	// exhausted. It indicates abnormal write contention on one account and
	// should be alerted on, not silently swallowed.
	ErrConcurrencyConflict = errors.New("billing update failed due to concurrent modification")

	// ErrAuditBufferFull is returned by the async audit writer when its
	// buffer is saturated.
	ErrAuditBufferFull = errors.New("audit buffer is full")

	// ErrAuditWriterClosed is returned by the async audit writer after
	// Close has been called.
	ErrAuditWriterClosed = errors.New("audit writer is closed")

	ErrInvalidPlanCatalog = errors.New("invalid plan catalog")
)
