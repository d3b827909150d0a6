package postgres

import (
	"context"
	"database/sql"

	ierr "github.com/recouphq/recoup/internal/errors"
)

// TryLock attempts to take a session-level advisory lock on the given key.
// Returns a release func and acquired=true on success; acquired=false means
// another session (typically another scheduler instance) holds the lock.
//
// The lock is tied to one pooled connection, which stays checked out until
// release is called.
func (c *Client) TryLock(ctx context.Context, key string) (release func(), acquired bool, err error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, false, ierr.WithError(err).
			WithHint("Failed to acquire database connection for lock").
			Mark(ierr.ErrDatabase)
	}

	var ok bool
	row := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock(hashtext($1))`, key)
	if err := row.Scan(&ok); err != nil {
		_ = conn.Close()
		return nil, false, ierr.WithError(err).
			WithHint("Failed to acquire advisory lock").
			WithReportableDetails(map[string]interface{}{
				"key": key,
			}).
			Mark(ierr.ErrDatabase)
	}

	if !ok {
		_ = conn.Close()
		return nil, false, nil
	}

	release = func() {
		// Unlock on the same connection that took the lock.
		_, uerr := conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock(hashtext($1))`, key)
		if uerr != nil && uerr != sql.ErrConnDone {
			c.logger.Errorw("failed to release advisory lock", "key", key, "error", uerr)
		}
		_ = conn.Close()
	}
	return release, true, nil
}
