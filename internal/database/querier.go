package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx every repository needs.
//
// *pgxpool.Pool, *pgx.Conn, pgx.Tx and pgxmock pools all satisfy it, so a
// repository can run on the shared pool, inside a transaction, or against a
// mock in tests without changes.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
