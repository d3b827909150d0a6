package postgres

import (
	"context"
	"database/sql"

	"github.com/recouphq/recoup/internal/domain/dunning"
	ierr "github.com/recouphq/recoup/internal/errors"
	"github.com/recouphq/recoup/internal/logger"
	"github.com/recouphq/recoup/internal/postgres"
	"github.com/recouphq/recoup/internal/types"
)

type attemptRepository struct {
	client *postgres.Client
	logger *logger.Logger
}

// NewAttemptRepository creates a Postgres backed attempt ledger. Clearing an
// episode flips episode_closed instead of deleting rows, so analytics keep
// seeing closed episodes while GetAttempts only returns the open one.
func NewAttemptRepository(client *postgres.Client, log *logger.Logger) dunning.Repository {
	return &attemptRepository{client: client, logger: log}
}

const attemptColumns = `
	id, subscription_id, user_id, attempt_number, attempted_at, outcome,
	failure_reason, invoice_id, environment_id,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *attemptRepository) RecordAttempt(ctx context.Context, attempt *dunning.Attempt) error {
	if attempt == nil {
		return ierr.NewError("attempt cannot be nil").
			WithHint("Attempt cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := attempt.Validate(); err != nil {
		return err
	}

	_, err := r.client.DB().ExecContext(ctx, `
		INSERT INTO dunning_attempts (
			id, subscription_id, user_id, attempt_number, attempted_at,
			outcome, failure_reason, invoice_id, episode_closed, environment_id,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,false,$9,$10,$11,$12,$13,$14,$15)`,
		attempt.ID,
		attempt.SubscriptionID,
		attempt.UserID,
		attempt.AttemptNumber,
		attempt.AttemptedAt,
		string(attempt.Outcome),
		attempt.FailureReason,
		attempt.InvoiceID,
		attempt.EnvironmentID,
		attempt.TenantID,
		string(attempt.Status),
		attempt.CreatedAt,
		attempt.UpdatedAt,
		attempt.CreatedBy,
		attempt.UpdatedBy)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to record dunning attempt").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": attempt.SubscriptionID,
				"attempt_number":  attempt.AttemptNumber,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *attemptRepository) GetAttempts(ctx context.Context, subscriptionID string) ([]*dunning.Attempt, error) {
	rows, err := r.client.DB().QueryContext(ctx, `
		SELECT `+attemptColumns+`
		FROM dunning_attempts
		WHERE subscription_id = $1 AND episode_closed = false
		ORDER BY attempt_number`,
		subscriptionID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load dunning attempts").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": subscriptionID,
			}).
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	return collectAttempts(rows)
}

func (r *attemptRepository) ClearAttempts(ctx context.Context, subscriptionID string) error {
	_, err := r.client.DB().ExecContext(ctx, `
		UPDATE dunning_attempts
		SET episode_closed = true
		WHERE subscription_id = $1 AND episode_closed = false`,
		subscriptionID)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to clear dunning episode").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": subscriptionID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *attemptRepository) ListAll(ctx context.Context) ([]*dunning.Attempt, error) {
	rows, err := r.client.DB().QueryContext(ctx, `
		SELECT `+attemptColumns+`
		FROM dunning_attempts
		ORDER BY attempted_at`)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list dunning attempts").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	return collectAttempts(rows)
}

func collectAttempts(rows *sql.Rows) ([]*dunning.Attempt, error) {
	var attempts []*dunning.Attempt
	for rows.Next() {
		var a dunning.Attempt
		var failureReason, invoiceID sql.NullString
		var outcome, status string

		err := rows.Scan(
			&a.ID,
			&a.SubscriptionID,
			&a.UserID,
			&a.AttemptNumber,
			&a.AttemptedAt,
			&outcome,
			&failureReason,
			&invoiceID,
			&a.EnvironmentID,
			&a.TenantID,
			&status,
			&a.CreatedAt,
			&a.UpdatedAt,
			&a.CreatedBy,
			&a.UpdatedBy,
		)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan dunning attempt row").
				Mark(ierr.ErrDatabase)
		}

		a.Outcome = types.AttemptOutcome(outcome)
		a.Status = types.Status(status)
		if failureReason.Valid {
			a.FailureReason = &failureReason.String
		}
		if invoiceID.Valid {
			a.InvoiceID = &invoiceID.String
		}
		attempts = append(attempts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate dunning attempt rows").
			Mark(ierr.ErrDatabase)
	}
	return attempts, nil
}
