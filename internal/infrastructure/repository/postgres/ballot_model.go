package postgres

import "time"

type ballotTableModel struct {
	ID        int64     `db:"id"`
	PublicID  string    `db:"public_id"`
	MatchID   string    `db:"match_public_id"`
	VoterID   string    `db:"voter_public_id"`
	CreatedAt time.Time `db:"created_at"`
}

type ballotPickTableModel struct {
	ID       int64  `db:"id"`
	BallotID string `db:"ballot_public_id"`
	PlayerID string `db:"player_public_id"`
	Points   int    `db:"points"`
}
