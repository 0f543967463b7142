package app

import (
	"context"

	"github.com/graaaaa/teamstats/internal/sqlq"
	"github.com/graaaaa/teamstats/internal/store"
)

// Conn is a database connection held for the duration of one request.
type Conn interface {
	Query(ctx context.Context, stmt sqlq.Statement) ([]store.Row, error)
	Release()
}

// Pool hands out request-scoped connections.
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
	Columns(ctx context.Context, table string) ([]string, error)
	Placeholder() sqlq.Placeholder
}

// StorePool adapts *store.Store to Pool.
type StorePool struct {
	Store *store.Store
}

// Acquire implements Pool.
func (p StorePool) Acquire(ctx context.Context) (Conn, error) {
	c, err := p.Store.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Columns implements Pool.
func (p StorePool) Columns(ctx context.Context, table string) ([]string, error) {
	return p.Store.Columns(ctx, table)
}

// Placeholder implements Pool.
func (p StorePool) Placeholder() sqlq.Placeholder {
	return p.Store.Placeholder()
}
