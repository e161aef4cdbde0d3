package ballot

import "time"

// RankingSize is the number of picks every ballot carries.
const RankingSize = 3

// TotalPoints is the sum every accepted ballot distributes (3+2+1).
const TotalPoints = 6

// Pick awards one ranked player a fixed number of points.
type Pick struct {
	PlayerID string
	Points   int
}

// Ballot is one voter's completed ranked submission for a match. Ballots are
// immutable once accepted; a voter gets exactly one per match.
type Ballot struct {
	ID        string
	MatchID   string
	VoterID   string
	Picks     []Pick
	CreatedAt time.Time
}
