package pool

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// something beginning a SQL transaction.
//
// Extracted subset of "pgxpool.Pool" / "pgx.Tx". When you need more
// methods found in pgx, add them.
type Begin interface {
	Begin(ctx context.Context) (Tx, error)
}

// something sending SQL.
//
// Extracted subset of "pgxpool.Pool" / "pgx.Tx".
type Queryer interface {
	// send a SQL command without result rows.
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)

	// send a SQL command with result rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)

	// send a SQL command with a single result row.
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// interface likes `pgx.Tx`.
//
// `pgx.Tx` does not implement Tx directly (golang lacks covariance in
// typing); wrap a pool with Wrap and call Begin to get one.
type Tx interface {
	Queryer
	Begin

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type pgxTx struct {
	base pgx.Tx
}

var _ Tx = &pgxTx{}

func (tx *pgxTx) Begin(ctx context.Context) (Tx, error) {
	inner, err := tx.base.Begin(ctx)
	if inner == nil {
		return nil, err
	}
	return &pgxTx{inner}, err
}

func (tx *pgxTx) Commit(ctx context.Context) error {
	return tx.base.Commit(ctx)
}

func (tx *pgxTx) Rollback(ctx context.Context) error {
	return tx.base.Rollback(ctx)
}

func (tx *pgxTx) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	return tx.base.Exec(ctx, sql, arguments...)
}

func (tx *pgxTx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return tx.base.Query(ctx, sql, args...)
}

func (tx *pgxTx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return tx.base.QueryRow(ctx, sql, args...)
}

// interface likes `*pgxpool.Pool`, as far as the stores need it.
type Pool interface {
	Begin
	Queryer

	Ping(ctx context.Context) error
}

type pgxPool struct {
	base *pgxpool.Pool
}

var _ Pool = &pgxPool{}

func (p *pgxPool) Begin(ctx context.Context) (Tx, error) {
	tx, err := p.base.Begin(ctx)
	if tx == nil {
		return nil, err
	}
	return &pgxTx{tx}, err
}

func (p *pgxPool) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	return p.base.Exec(ctx, sql, arguments...)
}

func (p *pgxPool) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return p.base.Query(ctx, sql, args...)
}

func (p *pgxPool) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return p.base.QueryRow(ctx, sql, args...)
}

func (p *pgxPool) Ping(ctx context.Context) error {
	return p.base.Ping(ctx)
}

func Wrap(p *pgxpool.Pool) Pool {
	return &pgxPool{p}
}

// New connects to the database and wraps the connection pool.
func New(ctx context.Context, connString string) (Pool, error) {
	base, err := pgxpool.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}
	return Wrap(base), nil
}
