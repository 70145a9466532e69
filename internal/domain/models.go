package domain

import "time"

// StandingRow is one team's current record within a partition. Position is
// re-derived after sorting; the source's row order is never trusted.
type StandingRow struct {
	Position    int    `json:"position"`
	TeamID      string `json:"teamId"`
	TeamName    string `json:"teamName"`
	GamesPlayed int    `json:"gamesPlayed"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Ties        int    `json:"ties"`
	Points      int    `json:"points"`
	RunsFor     int    `json:"runsFor"`
	RunsAgainst int    `json:"runsAgainst"`
	WinPct      string `json:"winPct"`
}

// GameRecord is one scheduled or completed game as extracted from the portal.
// Date is nil when the source's date text could not be parsed; the raw text
// is preserved alongside it. Scores are nil until the game completes.
type GameRecord struct {
	Date      *time.Time `json:"date,omitempty"`
	RawDate   string     `json:"rawDate,omitempty"`
	TimeText  string     `json:"timeText,omitempty"`
	HomeID    string     `json:"homeId"`
	HomeName  string     `json:"homeName"`
	AwayID    string     `json:"awayId"`
	AwayName  string     `json:"awayName"`
	HomeScore *int       `json:"homeScore,omitempty"`
	AwayScore *int       `json:"awayScore,omitempty"`
	Completed bool       `json:"completed"`
	Venue     string     `json:"venue,omitempty"`
	RawScore  string     `json:"rawScore,omitempty"`
	Division  string     `json:"division"`
	Tier      string     `json:"tier"`
}

// TeamGame is a GameRecord seen from one team's perspective.
type TeamGame struct {
	Date          *time.Time `json:"date,omitempty"`
	RawDate       string     `json:"rawDate,omitempty"`
	TimeText      string     `json:"timeText,omitempty"`
	OpponentID    string     `json:"opponentId"`
	OpponentName  string     `json:"opponentName"`
	IsHome        bool       `json:"isHome"`
	TeamScore     *int       `json:"teamScore,omitempty"`
	OpponentScore *int       `json:"opponentScore,omitempty"`
	Completed     bool       `json:"completed"`
	Venue         string     `json:"venue,omitempty"`
}

// TeamSchedule is the derived per-team view over a partition's games.
type TeamSchedule struct {
	TeamID   string     `json:"teamId"`
	Played   []TeamGame `json:"playedGames"`
	Upcoming []TeamGame `json:"upcomingGames"`
}

// StandingsSnapshot is an immutable captured standings table.
type StandingsSnapshot struct {
	Partition  string        `json:"partition"`
	Rows       []StandingRow `json:"rows"`
	CapturedAt time.Time     `json:"capturedAt"`
}

// ScheduleSnapshot is an immutable captured comprehensive schedule.
type ScheduleSnapshot struct {
	Partition  string       `json:"partition"`
	Games      []GameRecord `json:"games"`
	CapturedAt time.Time    `json:"capturedAt"`
}
