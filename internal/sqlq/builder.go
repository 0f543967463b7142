package sqlq

import (
	"fmt"
	"strconv"
	"strings"
)

// GroupingKey is the column every teams relation is filtered and ordered by.
const GroupingKey = "team"

// Placeholder selects how positional parameters are written.
type Placeholder int

const (
	// Dollar writes $1, $2, ... (PostgreSQL).
	Dollar Placeholder = iota
	// Question writes ? for every parameter (SQLite).
	Question
)

// Format returns the placeholder for the n-th parameter, starting at 1.
func (p Placeholder) Format(n int) string {
	if p == Question {
		return "?"
	}
	return "$" + strconv.Itoa(n)
}

// Statement is SQL text plus the arguments bound to its placeholders, in order.
type Statement struct {
	SQL  string
	Args []any
}

// StatsQuery describes a projected, filtered read of a stats relation.
//
// Table is trusted. Columns and Teams come from callers: columns are quoted
// as identifiers, teams are only ever bound as arguments.
type StatsQuery struct {
	Table       string
	Columns     []string
	Teams       []string
	Placeholder Placeholder
}

// Projection returns the column list that will be selected. A nil result
// means all columns.
func (q StatsQuery) Projection() []string {
	if len(q.Columns) == 0 {
		return nil
	}
	cols := make([]string, 0, len(q.Columns)+1)
	cols = append(cols, GroupingKey)
	return append(cols, q.Columns...)
}

// Build assembles
//
//	SELECT <projection> FROM <table> [WHERE team IN (...)] ORDER BY team ASC
//
// Projected columns are qualified with the table so that a missing column is
// rejected by the database. Duplicate columns are passed through. Column
// existence is not checked here; see ColumnSet.
func (q StatsQuery) Build() (Statement, error) {
	if q.Table == "" {
		return Statement{}, fmt.Errorf("table: %w", ErrEmptyIdentifier)
	}

	projection := "*"
	if cols := q.Projection(); cols != nil {
		for _, c := range cols {
			if c == "" {
				return Statement{}, fmt.Errorf("column: %w", ErrEmptyIdentifier)
			}
		}
		quoted := make([]string, len(cols))
		for i, c := range cols {
			quoted[i] = QuoteQualified(q.Table, c)
		}
		projection = strings.Join(quoted, ", ")
	}

	var (
		sb   strings.Builder
		args []any
	)

	sb.WriteString("SELECT ")
	sb.WriteString(projection)
	sb.WriteString(" FROM ")
	sb.WriteString(QuoteIdent(q.Table))

	if len(q.Teams) > 0 {
		placeholders := make([]string, len(q.Teams))
		args = make([]any, len(q.Teams))
		for i, team := range q.Teams {
			placeholders[i] = q.Placeholder.Format(i + 1)
			args[i] = team
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(QuoteIdent(GroupingKey))
		sb.WriteString(" IN (")
		sb.WriteString(strings.Join(placeholders, ", "))
		sb.WriteString(")")
	}

	writeOrderBy(&sb)

	return Statement{SQL: sb.String(), Args: args}, nil
}

// TeamsStatement selects every row of the teams relation.
func TeamsStatement(table string) (Statement, error) {
	if table == "" {
		return Statement{}, fmt.Errorf("table: %w", ErrEmptyIdentifier)
	}
	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(QuoteIdent(table))
	writeOrderBy(&sb)
	return Statement{SQL: sb.String()}, nil
}

// RecordsStatement selects the records relation, narrowed to one team when
// team is not empty.
func RecordsStatement(table, team string, p Placeholder) (Statement, error) {
	if table == "" {
		return Statement{}, fmt.Errorf("table: %w", ErrEmptyIdentifier)
	}

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(QuoteIdent(table))
	if team != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(QuoteIdent(GroupingKey))
		sb.WriteString(" = ")
		sb.WriteString(p.Format(1))
		args = []any{team}
	}
	writeOrderBy(&sb)
	return Statement{SQL: sb.String(), Args: args}, nil
}

// ColumnsStatement returns a statement that yields no rows but reports the
// relation's columns. It works on any driver that exposes result columns.
func ColumnsStatement(table string) (Statement, error) {
	if table == "" {
		return Statement{}, fmt.Errorf("table: %w", ErrEmptyIdentifier)
	}
	return Statement{SQL: "SELECT * FROM " + QuoteIdent(table) + " WHERE 1 = 0"}, nil
}

func writeOrderBy(sb *strings.Builder) {
	sb.WriteString(" ORDER BY ")
	sb.WriteString(QuoteIdent(GroupingKey))
	sb.WriteString(" ASC")
}
