package billing

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Service is the single entry point through which billing state may change.
// No code path outside this engine mutates the entitlement flag directly.
type Service interface {
	// UpdateBillingStatus reconciles one incoming billing event against the
	// account it targets. Stale and duplicate events return a skipped
	// Result with a nil error; fatal outcomes return a sentinel error and
	// carry its text in Result.Error.
	UpdateBillingStatus(ctx context.Context, req UpdateRequest) (Result, error)
}

// casAttempts bounds the conditional-write loop: the initial attempt plus
// exactly one retry. A second conflict signals abnormal contention and is
// surfaced instead of being retried away.
const casAttempts = 2

type service struct {
	accounts AccountStore
	audit    AuditStore
	dedup    Deduplicator
	catalog  *PlanCatalog
	log      *slog.Logger
	now      func() time.Time
	source   string
}

// NewService creates the billing reconciliation service.
// Panics if accounts or audit is nil to fail fast during initialization.
func NewService(accounts AccountStore, audit AuditStore, opts ...ServiceOption) Service {
	if accounts == nil {
		panic("billing: AccountStore is required")
	}
	if audit == nil {
		panic("billing: AuditStore is required")
	}

	s := &service{
		accounts: accounts,
		audit:    audit,
		log:      slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
		source:   DefaultSource,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *service) UpdateBillingStatus(ctx context.Context, req UpdateRequest) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{Error: err.Error()}, err
	}

	source := req.Source
	if source == "" {
		source = s.source
	}

	var marked bool
	if s.dedup != nil {
		first, err := s.dedup.MarkProcessed(ctx, req.EventID)
		switch {
		case err != nil:
			// Fail open: the ordering guard remains the correctness
			// backstop when the dedup backend is unavailable.
			s.log.WarnContext(ctx, "billing event dedup unavailable, continuing",
				"event_id", req.EventID, "error", err)
		case !first:
			return Result{Success: true, Skipped: true, Reason: ReasonDuplicateEvent}, nil
		default:
			marked = true
		}
	}

	account, err := s.accounts.GetByExternalUserID(ctx, req.ExternalUserID)
	if err != nil {
		return s.fail(ctx, marked, req.EventID, err)
	}

	for attempt := range casAttempts {
		if attempt > 0 {
			// Re-read the latest row after a conflict; the competing writer
			// may have applied a newer event, so the ordering guard and the
			// transition both run again against fresh state.
			account, err = s.accounts.GetByExternalUserID(ctx, req.ExternalUserID)
			if err != nil {
				return s.fail(ctx, marked, req.EventID, err)
			}
		}

		if stale(account.LastBillingEventAt, req.EventTimestamp) {
			return Result{Success: true, Skipped: true, Reason: ReasonStaleEvent}, nil
		}

		prev := account.State()
		next, recognized := applyTransition(prev, &req)
		if !recognized && attempt == 0 {
			s.log.WarnContext(ctx, "unrecognized billing event type",
				"event_type", string(req.EventType), "event_id", req.EventID)
		}
		next.Plan = s.resolvePlan(next.IsPro, &req)

		eventAt := s.now()
		if req.EventTimestamp != nil {
			eventAt = *req.EventTimestamp
		}

		updated, err := s.accounts.UpdateConditional(ctx, account.ID, account.BillingVersion, next, eventAt)
		if err != nil {
			if errors.Is(err, ErrVersionConflict) {
				continue
			}
			return s.fail(ctx, marked, req.EventID, err)
		}

		// The mutation is committed at this point; audit failure must not
		// un-commit it. Escalate via log and still report success.
		if err := s.audit.Insert(ctx, newAuditEntry(updated, prev, &req, source, s.now())); err != nil {
			s.log.ErrorContext(ctx, "billing audit write failed",
				"account_id", updated.ID, "event_id", req.EventID,
				"billing_version", updated.BillingVersion, "error", err)
		}

		return Result{Success: true, UpdatedVersion: updated.BillingVersion}, nil
	}

	s.log.ErrorContext(ctx, "billing update aborted after retry, abnormal contention",
		"external_user_id", req.ExternalUserID, "event_id", req.EventID)
	return s.fail(ctx, marked, req.EventID, ErrConcurrencyConflict)
}

// fail surfaces a fatal outcome. If this invocation claimed the event id in
// the deduplicator, the claim is released first so the provider's
// redelivery is processed instead of being skipped as a duplicate; an
// unmark failure is logged and otherwise ignored (fail open).
func (s *service) fail(ctx context.Context, marked bool, eventID string, err error) (Result, error) {
	if marked {
		if uerr := s.dedup.Unmark(ctx, eventID); uerr != nil {
			s.log.WarnContext(ctx, "billing event dedup unmark failed, redelivery may be skipped",
				"event_id", eventID, "error", uerr)
		}
	}

	msg := err.Error()
	if errors.Is(err, ErrAccountNotFound) {
		msg = "User not found"
	}
	return Result{Error: msg}, err
}

// stale reports whether the event precedes the last applied event. Events
// without a timestamp are always considered newer; equal timestamps are
// processed normally.
func stale(lastApplied, eventAt *time.Time) bool {
	return lastApplied != nil && eventAt != nil && eventAt.Before(*lastApplied)
}

// resolvePlan derives the tier label for the candidate state. A catalog
// lookup by the caller-supplied plan id wins over the IsPro mirror.
func (s *service) resolvePlan(isPro bool, req *UpdateRequest) Plan {
	if s.catalog != nil {
		if id, ok := req.Metadata[MetadataPlanIDKey].(string); ok && id != "" {
			if tier, found := s.catalog.Resolve(id); found {
				return tier.Name
			}
		}
	}
	return derivePlan(isPro)
}
