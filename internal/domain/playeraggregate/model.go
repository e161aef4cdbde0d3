package playeraggregate

// GlobalScope is the competition key of the cross-competition aggregate row.
const GlobalScope = ""

// Aggregate is one player's folded career line within a scope. A scope is
// either a single competition or the global scope.
type Aggregate struct {
	PlayerID      string
	CompetitionID string
	TotalGoals    int
	TotalAssists  int
	TotalMatches  int
	// CurrentRating is the points total of the most recently closed voting
	// window, replaced wholesale on every window closure the player appears in.
	CurrentRating int
}

// Delta carries one player's contribution from a single completed match.
type Delta struct {
	PlayerID string
	Goals    int
	Assists  int
}

// RatingUpdate replaces one player's current rating after a window closes.
type RatingUpdate struct {
	PlayerID string
	Rating   int
}
