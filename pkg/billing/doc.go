// Package billing reconciles payment-provider webhook events against a
// user's billing account despite out-of-order delivery, duplicate
// redelivery, and concurrent writers.
//
// Three mechanisms carry the correctness requirements:
//
//   - Optimistic concurrency: every mutation is a version-checked
//     conditional UPDATE. Handlers may run as parallel invocations across
//     processes; only the store's atomic conditional write can serialize
//     them. One bounded retry resolves the common two-writer race; a second
//     conflict is surfaced as ErrConcurrencyConflict, never swallowed.
//   - Monotonic ordering: each account records the timestamp of its last
//     applied event. An incoming event with an older timestamp is skipped,
//     so a redelivered cancellation can never revert a newer resubscription.
//     Ordering is strictly per account, never global.
//   - Append-only audit: every applied event writes exactly one immutable
//     before/after snapshot. The snapshot is a value copy taken before the
//     conditional write, so before and after never alias the same row.
//     Audit failure cannot roll back a committed mutation; it is escalated
//     through the logger.
//
// # Architecture
//
//   - Service: the single entry point (UpdateBillingStatus); nothing else
//     may mutate the entitlement flag.
//   - AccountStore / AuditStore: relational persistence consumed by the
//     service. PostgresStore implements both on pgx.
//   - Deduplicator: optional Redis-backed provider-event-id hardening.
//   - PlanCatalog: optional YAML mapping of provider plan ids to tiers.
//
// # Quick start
//
//	pool, err := pg.Connect(ctx, pgCfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	store := billing.NewPostgresStore(pool)
//	svc := billing.NewService(store, store,
//		billing.WithLogger(logger),
//		billing.WithDeduplicator(billing.NewRedisDeduplicator(rdb, dedupCfg)),
//	)
//
//	isPro := true
//	res, err := svc.UpdateBillingStatus(ctx, billing.UpdateRequest{
//		ExternalUserID:        userID,
//		IsPro:                 &isPro,
//		PaymentCustomerID:     &customerID,
//		PaymentSubscriptionID: &subscriptionID,
//		EventID:               providerEvent.ID,
//		EventTimestamp:        &providerEvent.OccurredAt,
//		EventType:             billing.EventSubscriptionCreated,
//	})
//
// Skipped outcomes (stale or duplicate events) return res.Skipped with a nil
// error: the engine assumes at-least-once delivery upstream and treats them
// as successes. Webhook signature verification, routing, and the provider's
// own state machine live with the callers, not here.
package billing
