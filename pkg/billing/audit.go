package billing

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry is one immutable record of an applied state transition:
// before/after snapshots plus the provider event that caused the change.
type AuditEntry struct {
	ID              uuid.UUID
	AccountID       uuid.UUID
	EventType       EventType
	ProviderEventID string
	Source          string
	PreviousState   AccountState
	NewState        AccountState
	Metadata        map[string]any
	CreatedAt       time.Time
}

// newAuditEntry builds the entry for a committed mutation. Caller metadata
// is merged with the account identity and the resulting billing version;
// the caller's map is copied, never retained.
func newAuditEntry(updated *Account, prev AccountState, req *UpdateRequest, source string, now time.Time) AuditEntry {
	metadata := make(map[string]any, len(req.Metadata)+2)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	metadata["external_user_id"] = updated.ExternalUserID
	metadata["billing_version"] = updated.BillingVersion

	return AuditEntry{
		ID:              uuid.New(),
		AccountID:       updated.ID,
		EventType:       req.EventType,
		ProviderEventID: req.EventID,
		Source:          source,
		PreviousState:   prev,
		NewState:        updated.State(),
		Metadata:        metadata,
		CreatedAt:       now,
	}
}
