package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/graaaaa/teamstats/internal/sqlq"
)

// Conn is a connection held by a single request.
type Conn struct {
	conn     *sqlx.Conn
	logger   *slog.Logger
	released bool
}

// Query runs stmt and reads every row.
func (c *Conn) Query(ctx context.Context, stmt sqlq.Statement) ([]Row, error) {
	rows, err := c.conn.QueryxContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	result := make([]Row, 0)
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result = append(result, Row{Columns: cols, Values: vals})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}

// Release returns the connection to the pool. Calling it more than once is a no-op.
func (c *Conn) Release() {
	if c.released {
		return
	}
	c.released = true
	if err := c.conn.Close(); err != nil {
		c.logger.Warn("release connection", "error", err)
	}
}
