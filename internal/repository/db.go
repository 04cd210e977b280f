package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write violates a unique constraint
	ErrDuplicate = errors.New("duplicate")
)

const uniqueViolation = "23505"

// Connect opens a connection pool and verifies it with a ping
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database dsn: %w", err)
	}
	cfg.MaxConns = 25

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                  UUID PRIMARY KEY,
		username            TEXT NOT NULL UNIQUE,
		email               TEXT NOT NULL UNIQUE,
		password_hash       TEXT NOT NULL,
		profile_picture_url TEXT NOT NULL DEFAULT '',
		bio                 VARCHAR(160) NOT NULL DEFAULT '',
		saved_posts         UUID[] NOT NULL DEFAULT '{}',
		following           UUID[] NOT NULL DEFAULT '{}',
		followers           UUID[] NOT NULL DEFAULT '{}',
		push_token          TEXT,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id         UUID PRIMARY KEY,
		user_id    UUID NOT NULL REFERENCES users(id),
		text       TEXT NOT NULL DEFAULT '',
		image_url  TEXT NOT NULL DEFAULT '',
		likes      UUID[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS posts_user_created_idx ON posts (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS posts_created_idx ON posts (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS post_comments (
		id                  UUID PRIMARY KEY,
		post_id             UUID NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		user_id             UUID NOT NULL REFERENCES users(id),
		username            TEXT NOT NULL,
		profile_picture_url TEXT NOT NULL DEFAULT '',
		text                TEXT NOT NULL,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS post_comments_post_idx ON post_comments (post_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         UUID PRIMARY KEY,
		user_to    UUID NOT NULL REFERENCES users(id),
		user_from  UUID NOT NULL REFERENCES users(id),
		post_id    UUID,
		type       TEXT NOT NULL CHECK (type IN ('like', 'comment', 'follow')),
		read       BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_user_to_idx ON notifications (user_to, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS notifications_post_idx ON notifications (post_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS notifications_follow_once_idx
		ON notifications (user_to, user_from) WHERE type = 'follow'`,
}

// Migrate creates the schema if it does not exist yet
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for i, query := range migrations {
		if _, err := db.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", i, err)
		}
	}
	return nil
}

// notFound wraps pgx.ErrNoRows into ErrNotFound, leaving other errors alone
func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
