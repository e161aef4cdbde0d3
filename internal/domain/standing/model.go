package standing

// TeamStanding is one row of a computed league table.
type TeamStanding struct {
	TeamID         string
	TeamName       string
	Played         int
	Wins           int
	Draws          int
	Losses         int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Points         int
	Position       int
}
