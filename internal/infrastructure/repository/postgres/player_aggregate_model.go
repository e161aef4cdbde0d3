package postgres

import "time"

type playerAggregateTableModel struct {
	PlayerID      string    `db:"player_public_id"`
	CompetitionID string    `db:"competition_public_id"`
	TotalGoals    int       `db:"total_goals"`
	TotalAssists  int       `db:"total_assists"`
	TotalMatches  int       `db:"total_matches"`
	CurrentRating int       `db:"current_rating"`
	UpdatedAt     time.Time `db:"updated_at"`
}

const (
	eventKindMatchCompletion = "match_completion"
	eventKindWindowRatings   = "window_ratings"
)
