package team

// Team represents one club registered in a competition.
type Team struct {
	ID            string
	CompetitionID string
	Name          string
	Short         string
}
