package postgres

import "time"

type votingWindowTableModel struct {
	ID             int64      `db:"id"`
	MatchID        string     `db:"match_public_id"`
	CompetitionID  string     `db:"competition_public_id"`
	OpensAt        time.Time  `db:"opens_at"`
	ClosesAt       time.Time  `db:"closes_at"`
	RemindAt       time.Time  `db:"remind_at"`
	ReminderSentAt *time.Time `db:"reminder_sent_at"`
	ClosedAt       *time.Time `db:"closed_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}
