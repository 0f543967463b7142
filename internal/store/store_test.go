package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/graaaaa/teamstats/internal/sqlq"
)

const testSchema = `
CREATE TABLE team_stats (
	team   TEXT NOT NULL,
	wins   INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	pts    REAL
);
INSERT INTO team_stats (team, wins, losses, pts) VALUES
	('Lakers', 47, 35, 118.0),
	('Celtics', 64, 18, 120.6),
	('Bulls', 39, 43, 112.3);
`

// openTestStore opens a SQLite store in a temp dir with the stats table seeded.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.sqlite")

	st, err := Open(context.Background(), Options{
		Driver: DriverSQLite,
		DSN:    "file:" + dbPath + "?_pragma=busy_timeout(5000)",
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if _, err := st.DB().Exec(testSchema); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return st
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "mysql", DSN: "x"})
	if !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("err = %v, want ErrUnsupportedDriver", err)
	}
}

func TestPlaceholderFor(t *testing.T) {
	tests := []struct {
		driver string
		want   sqlq.Placeholder
	}{
		{DriverPostgres, sqlq.Dollar},
		{DriverPgx, sqlq.Dollar},
		{DriverSQLite, sqlq.Question},
	}
	for _, tt := range tests {
		if got := PlaceholderFor(tt.driver); got != tt.want {
			t.Errorf("PlaceholderFor(%q) = %v, want %v", tt.driver, got, tt.want)
		}
	}
}

func TestConn_QueryStats(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	stmt, err := sqlq.StatsQuery{
		Table:       "team_stats",
		Columns:     []string{"wins", "losses"},
		Teams:       []string{"Lakers", "Celtics"},
		Placeholder: st.Placeholder(),
	}.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	conn, err := st.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, stmt)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	// Ordered by team ascending
	if team, _ := rows[0].Get("team"); team != "Celtics" {
		t.Errorf("rows[0].team = %v, want Celtics", team)
	}
	if team, _ := rows[1].Get("team"); team != "Lakers" {
		t.Errorf("rows[1].team = %v, want Lakers", team)
	}

	wantCols := []string{"team", "wins", "losses"}
	for i, c := range wantCols {
		if rows[0].Columns[i] != c {
			t.Errorf("column %d = %q, want %q", i, rows[0].Columns[i], c)
		}
	}
}

func TestConn_QueryEmptyResultIsNotNil(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	stmt, _ := sqlq.StatsQuery{
		Table:       "team_stats",
		Teams:       []string{"Nobody"},
		Placeholder: st.Placeholder(),
	}.Build()

	conn, err := st.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, stmt)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("rows = %#v, want empty non-nil", rows)
	}
}

func TestConn_HostileFilterIsData(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	stmt, _ := sqlq.StatsQuery{
		Table:       "team_stats",
		Teams:       []string{"Lakers') OR 1=1 --", "x'; DROP TABLE team_stats; --"},
		Placeholder: st.Placeholder(),
	}.Build()

	conn, err := st.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	rows, err := conn.Query(ctx, stmt)
	conn.Release()
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("len(rows) = %d, want 0", len(rows))
	}

	// Table must still exist
	cols, err := st.Columns(ctx, "team_stats")
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	if len(cols) != 4 {
		t.Errorf("cols = %v", cols)
	}
}

func TestConn_HostileIdentifierRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	odd := `we"ird; DROP TABLE team_stats; --`
	ddl := "CREATE TABLE " + sqlq.QuoteIdent("odd table") + " (team TEXT, " + sqlq.QuoteIdent(odd) + " INTEGER)"
	if _, err := st.DB().Exec(ddl); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := st.DB().Exec(`INSERT INTO "odd table" VALUES ('Lakers', 7)`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	stmt, err := sqlq.StatsQuery{Table: "odd table", Columns: []string{odd}}.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	conn, err := st.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, stmt)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if got, ok := rows[0].Get(odd); !ok || got != int64(7) {
		t.Errorf("odd column = %v (%v), want 7", got, ok)
	}
}

func TestConn_UnknownColumnFails(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	stmt, _ := sqlq.StatsQuery{Table: "team_stats", Columns: []string{"nope"}}.Build()

	conn, err := st.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	_, err = conn.Query(ctx, stmt)
	conn.Release()
	if err == nil {
		t.Fatal("expected error for unknown column")
	}
	if n := st.InUse(); n != 0 {
		t.Errorf("InUse = %d after release, want 0", n)
	}
}

func TestConn_ReleaseTwice(t *testing.T) {
	st := openTestStore(t)

	conn, err := st.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if n := st.InUse(); n != 1 {
		t.Errorf("InUse = %d, want 1", n)
	}
	conn.Release()
	conn.Release()
	if n := st.InUse(); n != 0 {
		t.Errorf("InUse = %d, want 0", n)
	}
}

func TestColumns(t *testing.T) {
	st := openTestStore(t)

	cols, err := st.Columns(context.Background(), "team_stats")
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	want := []string{"team", "wins", "losses", "pts"}
	if len(cols) != len(want) {
		t.Fatalf("cols = %v, want %v", cols, want)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Errorf("cols[%d] = %q, want %q", i, cols[i], want[i])
		}
	}

	if _, err := st.Columns(context.Background(), "missing_table"); err == nil {
		t.Error("expected error for missing table")
	}
}

func TestRow_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		want string
	}{
		{
			name: "column order kept",
			row:  Row{Columns: []string{"team", "wins", "losses"}, Values: []any{"Lakers", int64(47), int64(35)}},
			want: `{"team":"Lakers","wins":47,"losses":35}`,
		},
		{
			name: "duplicate keeps first",
			row:  Row{Columns: []string{"team", "team", "wins"}, Values: []any{"Lakers", "Lakers", int64(1)}},
			want: `{"team":"Lakers","wins":1}`,
		},
		{
			name: "bytes become strings",
			row:  Row{Columns: []string{"team", "pct"}, Values: []any{[]byte("Bulls"), []byte("0.476")}},
			want: `{"team":"Bulls","pct":"0.476"}`,
		},
		{
			name: "null",
			row:  Row{Columns: []string{"team", "pts"}, Values: []any{"Bulls", nil}},
			want: `{"team":"Bulls","pts":null}`,
		},
		{
			name: "empty",
			row:  Row{},
			want: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.row)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRow_MarshalJSONMismatch(t *testing.T) {
	_, err := json.Marshal(Row{Columns: []string{"a"}})
	if err == nil {
		t.Error("expected error for mismatched row")
	}
}
