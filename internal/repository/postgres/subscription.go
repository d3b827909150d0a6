package postgres

import (
	"context"
	"database/sql"

	"github.com/recouphq/recoup/internal/domain/subscription"
	ierr "github.com/recouphq/recoup/internal/errors"
	"github.com/recouphq/recoup/internal/logger"
	"github.com/recouphq/recoup/internal/postgres"
	"github.com/recouphq/recoup/internal/types"
)

type subscriptionRepository struct {
	client *postgres.Client
	logger *logger.Logger
}

// NewSubscriptionRepository creates a Postgres backed subscription repository
func NewSubscriptionRepository(client *postgres.Client, log *logger.Logger) subscription.Repository {
	return &subscriptionRepository{client: client, logger: log}
}

const subscriptionColumns = `
	id, user_id, customer_email, gateway_customer_id, gateway_subscription_id,
	tier, subscription_status, current_period_start, current_period_end,
	cancel_at_period_end, canceled_at, environment_id,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	row := r.client.DB().QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE id = $1 AND status != $2`,
		id, string(types.StatusDeleted))

	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription").
			Mark(ierr.ErrDatabase)
	}
	return sub, nil
}

func (r *subscriptionRepository) ListByStatus(ctx context.Context, status types.SubscriptionStatus) ([]*subscription.Subscription, error) {
	rows, err := r.client.DB().QueryContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE subscription_status = $1 AND status != $2
		ORDER BY created_at`,
		string(status), string(types.StatusDeleted))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscriptions").
			WithReportableDetails(map[string]interface{}{
				"subscription_status": status,
			}).
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var subs []*subscription.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan subscription row").
				Mark(ierr.ErrDatabase)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate subscription rows").
			Mark(ierr.ErrDatabase)
	}
	return subs, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").
			WithHint("Subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}

	res, err := r.client.DB().ExecContext(ctx, `
		UPDATE subscriptions
		SET subscription_status = $2,
		    current_period_start = $3,
		    current_period_end = $4,
		    cancel_at_period_end = $5,
		    canceled_at = $6,
		    updated_at = $7,
		    updated_by = $8
		WHERE id = $1`,
		sub.ID,
		string(sub.SubscriptionStatus),
		sub.CurrentPeriodStart,
		sub.CurrentPeriodEnd,
		sub.CancelAtPeriodEnd,
		sub.CanceledAt,
		sub.UpdatedAt,
		sub.UpdatedBy)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			WithReportableDetails(map[string]interface{}{
				"id": sub.ID,
			}).
			Mark(ierr.ErrDatabase)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			WithReportableDetails(map[string]interface{}{
				"id": sub.ID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriptionRepository) CountByStatus(ctx context.Context, status types.SubscriptionStatus) (int, error) {
	var count int
	err := r.client.DB().QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM subscriptions
		WHERE subscription_status = $1 AND status != $2`,
		string(status), string(types.StatusDeleted)).Scan(&count)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count subscriptions").
			WithReportableDetails(map[string]interface{}{
				"subscription_status": status,
			}).
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubscription(row rowScanner) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	var gatewaySubID sql.NullString
	var canceledAt sql.NullTime

	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.CustomerEmail,
		&sub.GatewayCustomerID,
		&gatewaySubID,
		&sub.Tier,
		&sub.SubscriptionStatus,
		&sub.CurrentPeriodStart,
		&sub.CurrentPeriodEnd,
		&sub.CancelAtPeriodEnd,
		&canceledAt,
		&sub.EnvironmentID,
		&sub.TenantID,
		&sub.Status,
		&sub.CreatedAt,
		&sub.UpdatedAt,
		&sub.CreatedBy,
		&sub.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	if gatewaySubID.Valid {
		sub.GatewaySubscriptionID = &gatewaySubID.String
	}
	if canceledAt.Valid {
		t := canceledAt.Time
		sub.CanceledAt = &t
	}
	return &sub, nil
}
