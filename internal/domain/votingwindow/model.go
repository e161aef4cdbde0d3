package votingwindow

import "time"

const (
	StateNotStarted = "NOT_STARTED"
	StateOpen       = "OPEN"
	StateClosed     = "CLOSED"
)

// Window is the time-bounded voting period attached to one completed match.
// Its state is a pure function of the clock against OpensAt/ClosesAt; once a
// closure has been persisted (ClosedAt set) the window never reopens.
type Window struct {
	MatchID        string
	CompetitionID  string
	OpensAt        time.Time
	ClosesAt       time.Time
	RemindAt       time.Time
	ReminderSentAt *time.Time
	ClosedAt       *time.Time
}

// StateAt derives the window state at the given instant. The close boundary
// is exclusive: a ballot arriving exactly at ClosesAt is already too late.
func (w Window) StateAt(now time.Time) string {
	if w.ClosedAt != nil {
		return StateClosed
	}
	if now.Before(w.OpensAt) {
		return StateNotStarted
	}
	if !now.Before(w.ClosesAt) {
		return StateClosed
	}
	return StateOpen
}

// ReminderDueAt reports whether the reminder should fire at the given
// instant: the window is still open, the reminder moment has passed and no
// reminder has been sent yet.
func (w Window) ReminderDueAt(now time.Time) bool {
	if w.StateAt(now) != StateOpen {
		return false
	}
	if w.ReminderSentAt != nil {
		return false
	}
	return !now.Before(w.RemindAt)
}
