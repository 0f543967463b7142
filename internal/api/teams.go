package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/graaaaa/teamstats/internal/app"
	"github.com/graaaaa/teamstats/internal/sqlq"
	"github.com/graaaaa/teamstats/internal/store"
)

// handleTeams handles GET /teams
func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	rows, err := s.teams.ListTeams(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "", err)
		return
	}
	s.writeRows(w, r, rows)
}

// handleRecords handles GET /teams/records.
// Only the first non-empty team value is used.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	team := firstValue(r.URL.Query(), "team")

	rows, err := s.teams.ListRecords(r.Context(), team)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "", err)
		return
	}
	s.writeRows(w, r, rows)
}

// handleStats handles GET /teams/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	filter := parseStatsFilter(r.URL.Query())

	rows, err := s.teams.QueryStats(r.Context(), filter)
	if err != nil {
		var uce *sqlq.UnknownColumnError
		if errors.As(err, &uce) {
			s.writeError(w, r, http.StatusBadRequest, "unknown stat: "+uce.Column, err)
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, "", err)
		return
	}
	s.writeRows(w, r, rows)
}

// writeRows writes rows as a JSON array, never null.
func (s *Server) writeRows(w http.ResponseWriter, r *http.Request, rows []store.Row) {
	if rows == nil {
		rows = []store.Row{}
	}
	s.writeJSON(w, r, http.StatusOK, rows)
}

// parseStatsFilter reads the repeatable team and stat parameters.
// A single value and repeated values are handled the same way.
func parseStatsFilter(q url.Values) app.StatsFilter {
	return app.StatsFilter{
		Teams: nonEmpty(q["team"]),
		Stats: nonEmpty(q["stat"]),
	}
}

// firstValue returns the first non-empty value of key.
func firstValue(q url.Values, key string) string {
	for _, v := range q[key] {
		if v != "" {
			return v
		}
	}
	return ""
}

// nonEmpty drops empty strings, keeping order. It returns nil when nothing is left.
func nonEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
