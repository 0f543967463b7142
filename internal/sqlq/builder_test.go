package sqlq

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(stmt Statement) []byte {
	return []byte(fmt.Sprintf("%s\n%q\n", stmt.SQL, stmt.Args))
}

func TestBuild_Golden(t *testing.T) {
	tests := []struct {
		name  string
		build func() (Statement, error)
	}{
		{"stats_lakers_wins_losses", func() (Statement, error) {
			return StatsQuery{
				Table:   "team_stats",
				Columns: []string{"wins", "losses"},
				Teams:   []string{"Lakers"},
			}.Build()
		}},
		{"stats_all", func() (Statement, error) {
			return StatsQuery{Table: "team_stats"}.Build()
		}},
		{"stats_two_teams_question", func() (Statement, error) {
			return StatsQuery{
				Table:       "team_stats",
				Columns:     []string{"pts"},
				Teams:       []string{"Celtics", "Lakers"},
				Placeholder: Question,
			}.Build()
		}},
		{"records_one_team", func() (Statement, error) {
			return RecordsStatement("teamrecords", "Celtics", Dollar)
		}},
		{"teams_all", func() (Statement, error) {
			return TeamsStatement("teams")
		}},
	}

	g := goldie.New(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := tt.build()
			require.NoError(t, err)
			g.Assert(t, tt.name, render(stmt))
		})
	}
}

func TestBuild_GroupingKeyAlwaysProjected(t *testing.T) {
	stmt, err := StatsQuery{Table: "team_stats", Columns: []string{"wins"}}.Build()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stmt.SQL, `SELECT "team_stats"."team", "team_stats"."wins" FROM`), stmt.SQL)
}

func TestBuild_DuplicateColumnsPassThrough(t *testing.T) {
	stmt, err := StatsQuery{Table: "team_stats", Columns: []string{"team", "wins", "wins"}}.Build()
	require.NoError(t, err)
	assert.Equal(t, `SELECT "team_stats"."team", "team_stats"."team", "team_stats"."wins", "team_stats"."wins" FROM "team_stats" ORDER BY "team" ASC`, stmt.SQL)
	assert.Empty(t, stmt.Args)
}

func TestBuild_FilterValuesOnlyBound(t *testing.T) {
	teams := []string{
		"Lakers' OR '1'='1",
		"x); DROP TABLE team_stats; --",
		`Trail "Blazers"`,
		"$1",
	}
	stmt, err := StatsQuery{Table: "team_stats", Columns: []string{"wins"}, Teams: teams}.Build()
	require.NoError(t, err)

	for _, v := range teams[:3] {
		assert.NotContains(t, stmt.SQL, v)
	}
	require.Len(t, stmt.Args, len(teams))
	for i, v := range teams {
		assert.Equal(t, v, stmt.Args[i])
	}
}

var dollarParam = regexp.MustCompile(`\$(\d+)`)

func TestBuild_PlaceholdersAlignWithArgs(t *testing.T) {
	for n := 0; n <= 12; n++ {
		teams := make([]string, n)
		for i := range teams {
			teams[i] = "team-" + strconv.Itoa(i)
		}
		stmt, err := StatsQuery{Table: "team_stats", Teams: teams}.Build()
		require.NoError(t, err)

		matches := dollarParam.FindAllStringSubmatch(stmt.SQL, -1)
		require.Len(t, matches, len(stmt.Args))
		for i, m := range matches {
			assert.Equal(t, strconv.Itoa(i+1), m[1], "placeholder %d out of order", i)
			assert.Equal(t, teams[i], stmt.Args[i])
		}
	}
}

func TestBuild_QuestionPlaceholders(t *testing.T) {
	stmt, err := StatsQuery{Table: "team_stats", Teams: []string{"a", "b", "c"}, Placeholder: Question}.Build()
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(stmt.SQL, "?"))
	assert.Len(t, stmt.Args, 3)
}

func TestBuild_HostileColumnIsQuoted(t *testing.T) {
	stmt, err := StatsQuery{Table: "team_stats", Columns: []string{`wins" FROM teams; --`}}.Build()
	require.NoError(t, err)
	assert.Equal(t, `SELECT "team_stats"."team", "team_stats"."wins"" FROM teams; --" FROM "team_stats" ORDER BY "team" ASC`, stmt.SQL)
}

func TestBuild_EmptyIdentifiers(t *testing.T) {
	_, err := StatsQuery{}.Build()
	assert.ErrorIs(t, err, ErrEmptyIdentifier)

	_, err = StatsQuery{Table: "team_stats", Columns: []string{"wins", ""}}.Build()
	assert.ErrorIs(t, err, ErrEmptyIdentifier)

	_, err = TeamsStatement("")
	assert.ErrorIs(t, err, ErrEmptyIdentifier)

	_, err = RecordsStatement("", "Lakers", Dollar)
	assert.ErrorIs(t, err, ErrEmptyIdentifier)

	_, err = ColumnsStatement("")
	assert.ErrorIs(t, err, ErrEmptyIdentifier)
}

func TestBuild_Deterministic(t *testing.T) {
	q := StatsQuery{Table: "team_stats", Columns: []string{"wins", "losses"}, Teams: []string{"Lakers", "Celtics"}}
	a, err := q.Build()
	require.NoError(t, err)
	b, err := q.Build()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRecordsStatement_NoTeam(t *testing.T) {
	stmt, err := RecordsStatement("teamrecords", "", Dollar)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "teamrecords" ORDER BY "team" ASC`, stmt.SQL)
	assert.Nil(t, stmt.Args)
}

func TestColumnsStatement(t *testing.T) {
	stmt, err := ColumnsStatement(`team"stats`)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "team""stats" WHERE 1 = 0`, stmt.SQL)
}

func TestColumnSet(t *testing.T) {
	set := NewColumnSet("team", "wins", "losses")
	assert.True(t, set.Has("wins"))
	assert.False(t, set.Has("WINS"))
	assert.NoError(t, set.Check([]string{"wins", "losses"}))
	assert.NoError(t, set.Check(nil))

	err := set.Check([]string{"wins", "pts", "reb"})
	require.ErrorIs(t, err, ErrUnknownColumn)
	var uce *UnknownColumnError
	require.ErrorAs(t, err, &uce)
	assert.Equal(t, "pts", uce.Column)

	assert.Equal(t, []string{"losses", "team", "wins"}, set.Names())
}
