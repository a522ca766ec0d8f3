package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func TestApplyTransition(t *testing.T) {
	proState := AccountState{
		IsPro:                 true,
		Plan:                  PlanPro,
		PaymentCustomerID:     strPtr("cus_1"),
		PaymentSubscriptionID: strPtr("sub_1"),
	}
	freeState := AccountState{
		IsPro: false,
		Plan:  PlanFree,
	}

	tests := []struct {
		name       string
		prev       AccountState
		req        UpdateRequest
		want       AccountState
		recognized bool
	}{
		{
			name: "subscription created applies payload verbatim",
			prev: freeState,
			req: UpdateRequest{
				EventType:             EventSubscriptionCreated,
				IsPro:                 boolPtr(true),
				PaymentCustomerID:     strPtr("cus_1"),
				PaymentSubscriptionID: strPtr("sub_1"),
			},
			want:       proState,
			recognized: true,
		},
		{
			name: "subscription deleted clears subscription but keeps customer",
			prev: proState,
			req:  UpdateRequest{EventType: EventSubscriptionDeleted, IsPro: boolPtr(false)},
			want: AccountState{
				IsPro:             false,
				Plan:              PlanFree,
				PaymentCustomerID: strPtr("cus_1"),
			},
			recognized: true,
		},
		{
			name: "subscription deleted ignores payload isPro",
			prev: proState,
			req:  UpdateRequest{EventType: EventSubscriptionDeleted, IsPro: boolPtr(true)},
			want: AccountState{
				IsPro:             false,
				Plan:              PlanFree,
				PaymentCustomerID: strPtr("cus_1"),
			},
			recognized: true,
		},
		{
			name: "payment failed with terminal status revokes entitlement",
			prev: proState,
			req: UpdateRequest{
				EventType:          EventPaymentFailed,
				IsPro:              boolPtr(true),
				SubscriptionStatus: "unpaid",
			},
			want: AccountState{
				IsPro:                 false,
				Plan:                  PlanFree,
				PaymentCustomerID:     strPtr("cus_1"),
				PaymentSubscriptionID: strPtr("sub_1"),
			},
			recognized: true,
		},
		{
			name: "payment failed on active subscription changes nothing",
			prev: proState,
			req: UpdateRequest{
				EventType:          EventPaymentFailed,
				IsPro:              boolPtr(true),
				SubscriptionStatus: "active",
			},
			want:       proState,
			recognized: true,
		},
		{
			name: "payment succeeded restores entitlement when active",
			prev: AccountState{
				IsPro:                 false,
				Plan:                  PlanFree,
				PaymentCustomerID:     strPtr("cus_1"),
				PaymentSubscriptionID: strPtr("sub_1"),
			},
			req: UpdateRequest{
				EventType:          EventPaymentSucceeded,
				IsPro:              boolPtr(false),
				SubscriptionStatus: "active",
			},
			want:       proState,
			recognized: true,
		},
		{
			name: "payment succeeded without active status leaves entitlement",
			prev: freeState,
			req: UpdateRequest{
				EventType:          EventPaymentSucceeded,
				IsPro:              boolPtr(false),
				SubscriptionStatus: "trialing",
			},
			want:       freeState,
			recognized: true,
		},
		{
			name: "customer linked updates identifiers only",
			prev: proState,
			req: UpdateRequest{
				EventType:         EventCustomerLinked,
				PaymentCustomerID: strPtr("cus_2"),
			},
			want: AccountState{
				IsPro:                 true,
				Plan:                  PlanPro,
				PaymentCustomerID:     strPtr("cus_2"),
				PaymentSubscriptionID: strPtr("sub_1"),
			},
			recognized: true,
		},
		{
			name: "reconciliation fix applies explicit entitlement",
			prev: proState,
			req: UpdateRequest{
				EventType: EventReconciliationFix,
				IsPro:     boolPtr(false),
			},
			want: AccountState{
				IsPro:                 false,
				Plan:                  PlanFree,
				PaymentCustomerID:     strPtr("cus_1"),
				PaymentSubscriptionID: strPtr("sub_1"),
			},
			recognized: true,
		},
		{
			name: "unknown event type still applies provided fields",
			prev: freeState,
			req: UpdateRequest{
				EventType:         EventType("entitlement_sync"),
				IsPro:             boolPtr(true),
				PaymentCustomerID: strPtr("cus_9"),
			},
			want: AccountState{
				IsPro:             true,
				Plan:              PlanPro,
				PaymentCustomerID: strPtr("cus_9"),
			},
			recognized: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, recognized := applyTransition(tt.prev, &tt.req)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.recognized, recognized)
		})
	}
}

func TestApplyTransitionPaymentFailedStatuses(t *testing.T) {
	proState := AccountState{
		IsPro:                 true,
		Plan:                  PlanPro,
		PaymentCustomerID:     strPtr("cus_1"),
		PaymentSubscriptionID: strPtr("sub_1"),
	}
	revoked := AccountState{
		IsPro:                 false,
		Plan:                  PlanFree,
		PaymentCustomerID:     strPtr("cus_1"),
		PaymentSubscriptionID: strPtr("sub_1"),
	}

	tests := []struct {
		status string
		want   AccountState
	}{
		{status: "past_due", want: revoked},
		{status: "unpaid", want: revoked},
		{status: "incomplete", want: revoked},
		{status: "incomplete_expired", want: revoked},
		{status: "active", want: proState},
		{status: "trialing", want: proState},
		{status: "", want: proState},
	}

	for _, tt := range tests {
		name := tt.status
		if name == "" {
			name = "empty"
		}
		t.Run(name, func(t *testing.T) {
			got, recognized := applyTransition(proState, &UpdateRequest{
				EventType:          EventPaymentFailed,
				IsPro:              boolPtr(true),
				SubscriptionStatus: tt.status,
			})
			assert.Equal(t, tt.want, got)
			assert.True(t, recognized)
		})
	}
}

func TestApplyTransitionIsPure(t *testing.T) {
	prev := AccountState{
		IsPro:                 true,
		Plan:                  PlanPro,
		PaymentCustomerID:     strPtr("cus_1"),
		PaymentSubscriptionID: strPtr("sub_1"),
	}

	next, _ := applyTransition(prev, &UpdateRequest{
		EventType:         EventCustomerLinked,
		PaymentCustomerID: strPtr("cus_2"),
	})

	// The candidate must not alias the snapshot it was derived from.
	*next.PaymentCustomerID = "mutated"
	assert.Equal(t, "cus_1", *prev.PaymentCustomerID)
}

func TestStale(t *testing.T) {
	t1 := mustTime(t, "2025-03-01T10:00:00Z")
	t0 := t1.Add(-time.Hour)

	assert.True(t, stale(&t1, &t0), "older event is stale")
	assert.False(t, stale(&t1, &t1), "equal timestamps are not stale")
	assert.False(t, stale(nil, &t0), "no last applied event")
	assert.False(t, stale(&t1, nil), "events without timestamp are always newer")
}
