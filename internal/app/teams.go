package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/graaaaa/teamstats/internal/sqlq"
	"github.com/graaaaa/teamstats/internal/store"
)

// TeamsUsecase defines the read operations behind the /teams endpoints.
type TeamsUsecase interface {
	ListTeams(ctx context.Context) ([]store.Row, error)
	ListRecords(ctx context.Context, team string) ([]store.Row, error)
	QueryStats(ctx context.Context, f StatsFilter) ([]store.Row, error)
}

// StatsFilter selects teams and stat columns. Empty slices mean all.
type StatsFilter struct {
	Teams []string
	Stats []string
}

// Tables names the relation behind each endpoint.
type Tables struct {
	Teams   string
	Records string
	Stats   string
}

// TeamsService implements TeamsUsecase.
type TeamsService struct {
	pool   Pool
	tables Tables
	strict bool
	logger *slog.Logger

	// Stats columns, discovered on first use.
	mu      sync.Mutex
	columns sqlq.ColumnSet
}

// TeamsOption configures a TeamsService.
type TeamsOption func(*TeamsService)

// WithStrictColumns rejects stat names that are not columns of the stats table.
func WithStrictColumns(strict bool) TeamsOption {
	return func(s *TeamsService) { s.strict = strict }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) TeamsOption {
	return func(s *TeamsService) { s.logger = l }
}

// NewTeamsService creates a TeamsService. Column checking is on by default.
func NewTeamsService(pool Pool, tables Tables, opts ...TeamsOption) *TeamsService {
	s := &TeamsService{
		pool:   pool,
		tables: tables,
		strict: true,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListTeams returns every row of the teams table ordered by team.
func (s *TeamsService) ListTeams(ctx context.Context) ([]store.Row, error) {
	stmt, err := sqlq.TeamsStatement(s.tables.Teams)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, stmt)
}

// ListRecords returns the records table, narrowed to team when it is not empty.
func (s *TeamsService) ListRecords(ctx context.Context, team string) ([]store.Row, error) {
	stmt, err := sqlq.RecordsStatement(s.tables.Records, team, s.pool.Placeholder())
	if err != nil {
		return nil, err
	}
	return s.run(ctx, stmt)
}

// QueryStats projects the requested stats for the requested teams.
// The team column is always part of the projection.
func (s *TeamsService) QueryStats(ctx context.Context, f StatsFilter) ([]store.Row, error) {
	if s.strict && len(f.Stats) > 0 {
		allowed, err := s.statsColumns(ctx)
		if err != nil {
			return nil, err
		}
		if err := allowed.Check(f.Stats); err != nil {
			return nil, err
		}
	}

	stmt, err := sqlq.StatsQuery{
		Table:       s.tables.Stats,
		Columns:     f.Stats,
		Teams:       f.Teams,
		Placeholder: s.pool.Placeholder(),
	}.Build()
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "stats query", "sql", stmt.SQL, "params", len(stmt.Args))
	return s.run(ctx, stmt)
}

// statsColumns returns the allow-list for the stats table. A failed lookup
// is not remembered.
func (s *TeamsService) statsColumns(ctx context.Context) (sqlq.ColumnSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.columns != nil {
		return s.columns, nil
	}
	cols, err := s.pool.Columns(ctx, s.tables.Stats)
	if err != nil {
		return nil, fmt.Errorf("load stats columns: %w", err)
	}
	s.columns = sqlq.NewColumnSet(cols...)
	return s.columns, nil
}

// run executes stmt on a connection held only for this call.
func (s *TeamsService) run(ctx context.Context, stmt sqlq.Statement) ([]store.Row, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return conn.Query(ctx, stmt)
}
