package billing

import (
	"log/slog"
	"time"
)

// ServiceOption configures a Service instance.
type ServiceOption func(*service)

// WithLogger sets the structured logger used for warnings and escalations.
// Defaults to slog.Default().
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithDeduplicator enables provider-event-id deduplication before any store
// access. Optional hardening: the timestamp ordering guard alone already
// protects against reordered redelivery.
func WithDeduplicator(d Deduplicator) ServiceOption {
	return func(s *service) {
		s.dedup = d
	}
}

// WithPlanCatalog enables catalog-based tier resolution so Plan can extend
// beyond the free/pro mirror of the entitlement flag.
func WithPlanCatalog(c *PlanCatalog) ServiceOption {
	return func(s *service) {
		s.catalog = c
	}
}

// WithDefaultSource overrides the source recorded on events whose caller
// did not set one.
func WithDefaultSource(source string) ServiceOption {
	return func(s *service) {
		if source != "" {
			s.source = source
		}
	}
}

// WithClock replaces the time source. Used by tests to pin timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}
