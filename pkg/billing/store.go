package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccountStore defines the relational persistence the engine consumes.
// See PostgresStore for the pgx implementation.
type AccountStore interface {
	// GetByExternalUserID retrieves the billing account for an
	// authentication identity. Returns ErrAccountNotFound if absent.
	GetByExternalUserID(ctx context.Context, externalUserID string) (*Account, error)

	// UpdateConditional performs the optimistic write: it applies state and
	// eventAt only if the row's billing version still equals
	// expectedVersion, bumping the version by one. Returns the updated row,
	// or ErrVersionConflict when the condition matched zero rows.
	UpdateConditional(ctx context.Context, id uuid.UUID, expectedVersion int64, state AccountState, eventAt time.Time) (*Account, error)
}

// AuditStore persists the append-only audit trail. Entries are written
// exactly once per applied event and are never mutated or deleted.
type AuditStore interface {
	Insert(ctx context.Context, entry AuditEntry) error
}

// Deduplicator optionally rejects redelivered provider events by id before
// any store access. MarkProcessed returns true the first time an event id is
// seen; Unmark releases the id again so that upstream redelivery of an event
// that failed to apply is not answered as a duplicate. This is a hardening
// layer on top of the timestamp ordering guard, not a correctness
// requirement: when either call errors the engine fails open.
type Deduplicator interface {
	MarkProcessed(ctx context.Context, providerEventID string) (bool, error)
	Unmark(ctx context.Context, providerEventID string) error
}
