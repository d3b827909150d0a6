package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"github.com/recouphq/recoup/internal/config"
	ierr "github.com/recouphq/recoup/internal/errors"
	"github.com/recouphq/recoup/internal/logger"
)

// Client wraps the SQL connection pool shared by all Postgres repositories.
type Client struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewClient opens and verifies a Postgres connection pool.
func NewClient(cfg *config.Configuration, log *logger.Logger) (*Client, error) {
	db, err := sql.Open("postgres", cfg.Postgres.DSN)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to open postgres connection").
			Mark(ierr.ErrDatabase)
	}

	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to ping postgres").
			Mark(ierr.ErrDatabase)
	}

	return &Client{db: db, logger: log}, nil
}

// DB exposes the underlying pool to repositories.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}
