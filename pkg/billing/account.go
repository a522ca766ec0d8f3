package billing

import (
	"time"

	"github.com/google/uuid"
)

// Account is the persisted billing state of one user. It is only ever
// mutated through the engine's conditional write; BillingVersion grows by
// exactly one per applied event and LastBillingEventAt never moves backwards.
type Account struct {
	ID                    uuid.UUID
	ExternalUserID        string
	IsPro                 bool
	Plan                  Plan
	PaymentCustomerID     *string
	PaymentSubscriptionID *string
	BillingVersion        int64
	LastBillingEventAt    *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// AccountState is a value-copy snapshot of the mutable entitlement fields.
// Snapshots are taken before the conditional write executes so the audit
// trail's before/after images never alias the live row.
type AccountState struct {
	IsPro                 bool    `json:"is_pro"`
	Plan                  Plan    `json:"plan"`
	PaymentCustomerID     *string `json:"payment_customer_id"`
	PaymentSubscriptionID *string `json:"payment_subscription_id"`
}

// State returns a snapshot of the account's entitlement fields. Pointer
// fields are duplicated so the snapshot stays immutable when the row changes.
func (a *Account) State() AccountState {
	return AccountState{
		IsPro:                 a.IsPro,
		Plan:                  a.Plan,
		PaymentCustomerID:     copyStringPtr(a.PaymentCustomerID),
		PaymentSubscriptionID: copyStringPtr(a.PaymentSubscriptionID),
	}
}

func copyStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
