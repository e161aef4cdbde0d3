package postgres

import "time"

type competitionTableModel struct {
	ID                       int64      `db:"id"`
	PublicID                 string     `db:"public_id"`
	Name                     string     `db:"name"`
	Type                     string     `db:"type"`
	VotingEnabled            bool       `db:"voting_enabled"`
	VotingPeriodDays         int        `db:"voting_period_days"`
	ReminderDays             int        `db:"reminder_days"`
	KnockoutVotingPeriodDays int        `db:"knockout_voting_period_days"`
	AllowOwnTeamVotes        bool       `db:"allow_own_team_votes"`
	CreatedAt                time.Time  `db:"created_at"`
	UpdatedAt                time.Time  `db:"updated_at"`
	DeletedAt                *time.Time `db:"deleted_at"`
}
