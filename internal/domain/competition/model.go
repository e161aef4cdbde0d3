package competition

import "strings"

const (
	TypeLeague   = "LEAGUE"
	TypeKnockout = "KNOCKOUT"
	TypeFriendly = "FRIENDLY"
)

// Competition holds the settings a competition carries for matches, voting
// and standings.
type Competition struct {
	ID                       string
	Name                     string
	Type                     string
	VotingEnabled            bool
	VotingPeriodDays         int
	ReminderDays             int
	KnockoutVotingPeriodDays int
	AllowOwnTeamVotes        bool
}

func NormalizeType(value string) string {
	t := strings.ToUpper(strings.TrimSpace(value))
	if t == "" {
		return TypeLeague
	}
	return t
}

// EffectiveVotingPeriodDays resolves the voting period for one of this
// competition's matches. Knockout competitions use the knockout override when
// it is set; every other type always uses the base period.
func (c Competition) EffectiveVotingPeriodDays() int {
	if NormalizeType(c.Type) == TypeKnockout && c.KnockoutVotingPeriodDays > 0 {
		return c.KnockoutVotingPeriodDays
	}
	return c.VotingPeriodDays
}
