package billing

import "time"

// EventType identifies the kind of billing notification received from the
// payment provider (or from an internal reconciliation caller).
type EventType string

const (
	EventSubscriptionCreated    EventType = "subscription_created"
	EventSubscriptionUpdated    EventType = "subscription_updated"
	EventSubscriptionDeleted    EventType = "subscription_deleted"
	EventSubscriptionUpgraded   EventType = "subscription_upgraded"
	EventSubscriptionDowngraded EventType = "subscription_downgraded"
	EventPaymentSucceeded       EventType = "payment_succeeded"
	EventPaymentFailed          EventType = "payment_failed"
	EventReconciliationFix      EventType = "reconciliation_fix"
	EventCustomerCreated        EventType = "customer_created"
	EventCustomerLinked         EventType = "customer_linked"
)

// identifierOnly reports whether the event type may update provider
// identifiers without carrying an explicit entitlement flag.
func (t EventType) identifierOnly() bool {
	switch t {
	case EventReconciliationFix, EventCustomerCreated, EventCustomerLinked:
		return true
	}
	return false
}

// Plan classifies an account's entitlement tier. It mirrors the IsPro flag
// unless a plan catalog override names a different tier.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// derivePlan maps the entitlement flag to the default tier.
func derivePlan(isPro bool) Plan {
	if isPro {
		return PlanPro
	}
	return PlanFree
}

// Provider subscription status values the transition mapper cares about.
// Terminal statuses indicate the provider gave up collecting payment.
const (
	statusActive = "active"
)

var terminalPaymentStatuses = map[string]struct{}{
	"past_due":           {},
	"unpaid":             {},
	"incomplete":         {},
	"incomplete_expired": {},
}

// DefaultSource is recorded on events whose caller did not name a source.
const DefaultSource = "webhook"

// UpdateRequest is the engine's call contract: one incoming billing event to
// reconcile against the account identified by ExternalUserID.
//
// IsPro is required for subscription and payment event types. Identifier-only
// event types (reconciliation_fix, customer_created, customer_linked) may
// omit it, in which case the account's entitlement is left untouched.
type UpdateRequest struct {
	ExternalUserID        string
	IsPro                 *bool
	PaymentCustomerID     *string
	PaymentSubscriptionID *string
	EventID               string
	EventTimestamp        *time.Time
	EventType             EventType
	SubscriptionStatus    string
	Source                string
	Metadata              map[string]any
}

// Validate checks the required fields before any store access.
func (r *UpdateRequest) Validate() error {
	if r.ExternalUserID == "" {
		return ErrMissingExternalUserID
	}
	if r.EventID == "" {
		return ErrMissingEventID
	}
	if r.EventType == "" {
		return ErrMissingEventType
	}
	if r.IsPro == nil && !r.EventType.identifierOnly() {
		return ErrMissingIsPro
	}
	return nil
}

// Result reports the outcome of applying one billing event.
// Skipped outcomes are successes: the event was recognized as stale or
// duplicate and deliberately not applied.
type Result struct {
	Success        bool
	Skipped        bool
	Reason         string
	Error          string
	UpdatedVersion int64
}

// Skip reasons surfaced in Result.Reason.
const (
	ReasonStaleEvent     = "event older than last processed"
	ReasonDuplicateEvent = "duplicate provider event id"
)
