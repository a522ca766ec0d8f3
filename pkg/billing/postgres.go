package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/billingsync/pkg/pg"
)

// PostgresStore implements AccountStore and AuditStore on top of a pgx
// connection pool. Serialization across processes comes entirely from the
// version-checked UPDATE; no advisory locks are taken.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given pool.
// Panics if pool is nil to fail fast during initialization.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("billing: pgx pool is required")
	}
	return &PostgresStore{pool: pool}
}

const accountColumns = `id, external_user_id, is_pro, plan, payment_customer_id,
	payment_subscription_id, billing_version, last_billing_event_at, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(
		&a.ID,
		&a.ExternalUserID,
		&a.IsPro,
		&a.Plan,
		&a.PaymentCustomerID,
		&a.PaymentSubscriptionID,
		&a.BillingVersion,
		&a.LastBillingEventAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAccount bootstraps the billing row for a new identity with the
// free-tier defaults and billing version 1. The identity layer calls this
// once per user; the engine itself never creates or deletes accounts.
func (s *PostgresStore) CreateAccount(ctx context.Context, externalUserID string, paymentCustomerID *string) (*Account, error) {
	account, err := scanAccount(s.pool.QueryRow(ctx, `
		INSERT INTO billing_accounts (external_user_id, payment_customer_id)
		VALUES ($1, $2)
		RETURNING `+accountColumns,
		externalUserID, paymentCustomerID,
	))
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, ErrAccountAlreadyExists
		}
		return nil, err
	}
	return account, nil
}

// GetByExternalUserID implements AccountStore.
func (s *PostgresStore) GetByExternalUserID(ctx context.Context, externalUserID string) (*Account, error) {
	account, err := scanAccount(s.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM billing_accounts
		WHERE external_user_id = $1`,
		externalUserID,
	))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// UpdateConditional implements AccountStore. The WHERE clause on
// billing_version is what makes concurrent writers safe: only one writer
// observing a given version can match the row.
func (s *PostgresStore) UpdateConditional(ctx context.Context, id uuid.UUID, expectedVersion int64, state AccountState, eventAt time.Time) (*Account, error) {
	account, err := scanAccount(s.pool.QueryRow(ctx, `
		UPDATE billing_accounts
		SET is_pro = $1,
		    plan = $2,
		    payment_customer_id = $3,
		    payment_subscription_id = $4,
		    billing_version = billing_version + 1,
		    last_billing_event_at = $5,
		    updated_at = now()
		WHERE id = $6 AND billing_version = $7
		RETURNING `+accountColumns,
		state.IsPro,
		state.Plan,
		state.PaymentCustomerID,
		state.PaymentSubscriptionID,
		eventAt,
		id,
		expectedVersion,
	))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrVersionConflict
		}
		return nil, err
	}
	return account, nil
}

// Insert implements AuditStore. Snapshots and metadata land in JSONB
// columns; the table carries no UPDATE or DELETE path.
func (s *PostgresStore) Insert(ctx context.Context, entry AuditEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO billing_audit_log
			(id, account_id, event_type, provider_event_id, source,
			 previous_state, new_state, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID,
		entry.AccountID,
		entry.EventType,
		entry.ProviderEventID,
		entry.Source,
		entry.PreviousState,
		entry.NewState,
		entry.Metadata,
		entry.CreatedAt,
	)
	if err != nil {
		return errors.Join(errors.New("billing: audit insert failed"), err)
	}
	return nil
}
