package match

import "time"

const (
	SideHome = "HOME"
	SideAway = "AWAY"
)

// Participant is one roster entry of a completed match.
type Participant struct {
	PlayerID string
	TeamID   string
	Side     string
	Goals    int
	Assists  int
	Starter  bool
}

// Match is a completed fixture together with its final score and roster.
// Matches are recorded once their result is known and are immutable afterwards.
type Match struct {
	ID            string
	CompetitionID string
	HomeTeamID    string
	AwayTeamID    string
	HomeScore     int
	AwayScore     int
	HomePenalties *int
	AwayPenalties *int
	CompletedAt   time.Time
	Roster        []Participant
}

// ParticipantByPlayer returns the roster entry for the given player.
func (m Match) ParticipantByPlayer(playerID string) (Participant, bool) {
	for _, p := range m.Roster {
		if p.PlayerID == playerID {
			return p, true
		}
	}
	return Participant{}, false
}
