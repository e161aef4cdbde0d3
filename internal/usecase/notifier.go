package usecase

import (
	"context"
	"time"
)

// VotingEvent describes a voting window transition pushed to club channels.
type VotingEvent struct {
	MatchID       string    `json:"match_id"`
	CompetitionID string    `json:"competition_id"`
	OpensAt       time.Time `json:"opens_at"`
	ClosesAt      time.Time `json:"closes_at"`
}

// Notifier delivers voting lifecycle events. Delivery is best effort: callers
// log failures and move on, they never roll back state because a message did
// not go out.
type Notifier interface {
	VotingOpened(ctx context.Context, event VotingEvent) error
	VotingReminder(ctx context.Context, event VotingEvent) error
	VotingClosed(ctx context.Context, event VotingEvent) error
}

type noopNotifier struct{}

func (noopNotifier) VotingOpened(_ context.Context, _ VotingEvent) error   { return nil }
func (noopNotifier) VotingReminder(_ context.Context, _ VotingEvent) error { return nil }
func (noopNotifier) VotingClosed(_ context.Context, _ VotingEvent) error   { return nil }

func NewNoopNotifier() Notifier {
	return noopNotifier{}
}
