package postgres

import "time"

type matchTableModel struct {
	ID            int64      `db:"id"`
	PublicID      string     `db:"public_id"`
	CompetitionID string     `db:"competition_public_id"`
	HomeTeamID    string     `db:"home_team_public_id"`
	AwayTeamID    string     `db:"away_team_public_id"`
	HomeScore     int        `db:"home_score"`
	AwayScore     int        `db:"away_score"`
	HomePenalties *int       `db:"home_penalties"`
	AwayPenalties *int       `db:"away_penalties"`
	CompletedAt   time.Time  `db:"completed_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}

type matchParticipantTableModel struct {
	ID        int64      `db:"id"`
	MatchID   string     `db:"match_public_id"`
	PlayerID  string     `db:"player_public_id"`
	TeamID    string     `db:"team_public_id"`
	Side      string     `db:"side"`
	Goals     int        `db:"goals"`
	Assists   int        `db:"assists"`
	Starter   bool       `db:"starter"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}
