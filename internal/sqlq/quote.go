// Package sqlq builds the SQL statements served by the teams API.
//
// Structural parts of a statement (table and column names) are quoted as
// identifiers. Values supplied by callers are never written into the SQL
// text; they are returned alongside it as positional arguments.
package sqlq

import "strings"

// QuoteIdent returns s as a double-quoted identifier with embedded double
// quotes doubled.
//
//	QuoteIdent("team_stats")  -> "\"team_stats\""
//	QuoteIdent(`we"ird`)      -> "\"we\"\"ird\""
//	QuoteIdent("a; DROP b")   -> "\"a; DROP b\""
//
// A dot is part of the name, not a schema separator.
func QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// QuoteQualified returns column qualified by table, both quoted:
// "team_stats"."wins". SQLite reads a bare double-quoted name that matches no
// column as a string literal; a qualified name is always a column reference,
// so an unknown column is an error on every driver.
func QuoteQualified(table, column string) string {
	return QuoteIdent(table) + "." + QuoteIdent(column)
}

// QuoteLiteral returns s as a PostgreSQL string literal. It is not valid
// SQLite: SQLite has no E'...' strings.
//
// Single quotes are doubled. When s contains a backslash the literal is
// written in the E'...' form with backslashes doubled, so the result is the
// same whether or not standard_conforming_strings is enabled.
//
// Use positional arguments for values. This exists for the few places where a
// placeholder is not accepted.
func QuoteLiteral(s string) string {
	q := strings.ReplaceAll(s, `'`, `''`)
	if strings.Contains(q, `\`) {
		return `E'` + strings.ReplaceAll(q, `\`, `\\`) + `'`
	}
	return `'` + q + `'`
}
