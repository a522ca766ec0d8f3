package billing

// applyTransition maps one billing event onto the current entitlement state
// and returns the candidate new state. It is a pure function: fields the
// event does not carry retain their previous value, and the returned bool
// reports whether the event type was recognized.
//
// Unknown event types still apply whatever fields the payload provides so
// that newly introduced provider events degrade gracefully instead of being
// dropped; the caller logs them as unrecognized.
func applyTransition(prev AccountState, req *UpdateRequest) (AccountState, bool) {
	next := prev
	recognized := true

	switch req.EventType {
	case EventSubscriptionCreated, EventSubscriptionUpdated,
		EventSubscriptionUpgraded, EventSubscriptionDowngraded:
		// Payload is authoritative for these events.
		if req.IsPro != nil {
			next.IsPro = *req.IsPro
		}
		applyIdentifiers(&next, req)

	case EventSubscriptionDeleted:
		// Cancellation drops entitlement and the subscription reference but
		// keeps the customer reference for future resubscription.
		next.IsPro = false
		next.PaymentSubscriptionID = nil
		if req.PaymentCustomerID != nil {
			next.PaymentCustomerID = copyStringPtr(req.PaymentCustomerID)
		}

	case EventPaymentFailed:
		// Only terminal collection statuses revoke entitlement; a single
		// failed charge on an otherwise active subscription changes nothing.
		if _, terminal := terminalPaymentStatuses[req.SubscriptionStatus]; terminal {
			next.IsPro = false
		}
		applyIdentifiers(&next, req)

	case EventPaymentSucceeded:
		if req.SubscriptionStatus == statusActive {
			next.IsPro = true
		}
		applyIdentifiers(&next, req)

	case EventReconciliationFix, EventCustomerCreated, EventCustomerLinked:
		// Identifier maintenance; entitlement moves only when the payload
		// carries it explicitly.
		if req.IsPro != nil {
			next.IsPro = *req.IsPro
		}
		applyIdentifiers(&next, req)

	default:
		recognized = false
		if req.IsPro != nil {
			next.IsPro = *req.IsPro
		}
		applyIdentifiers(&next, req)
	}

	next.Plan = derivePlan(next.IsPro)
	return next, recognized
}

func applyIdentifiers(state *AccountState, req *UpdateRequest) {
	if req.PaymentCustomerID != nil {
		state.PaymentCustomerID = copyStringPtr(req.PaymentCustomerID)
	}
	if req.PaymentSubscriptionID != nil {
		state.PaymentSubscriptionID = copyStringPtr(req.PaymentSubscriptionID)
	}
}
