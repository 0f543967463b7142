// Package appinfo provides application identity constants.
// These are used across packages for consistent naming.
package appinfo

const (
	// AppName is the display name of the application.
	AppName = "teamstats"

	// EnvPrefix prefixes service-specific environment variables.
	// The database and port variables keep their unprefixed names.
	EnvPrefix = "TEAMSTATS_"

	// TeamsTable is the default relation served by GET /teams.
	TeamsTable = "teams"

	// RecordsTable is the default relation served by GET /teams/records.
	RecordsTable = "teamrecords"

	// StatsTable is the default relation served by GET /teams/stats.
	StatsTable = "team_stats"
)
