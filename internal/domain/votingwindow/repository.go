package votingwindow

import (
	"context"
	"time"
)

// Repository exposes voting window persistence. MarkClosed and
// MarkReminderSent are compare-and-set operations: they return false when
// another writer already performed the transition, so closure side effects
// and reminders run at most once.
type Repository interface {
	GetByMatch(ctx context.Context, matchID string) (Window, bool, error)
	Create(ctx context.Context, item Window) error
	// ListCloseDue returns windows whose close moment has passed but whose
	// closure has not been persisted yet.
	ListCloseDue(ctx context.Context, now time.Time) ([]Window, error)
	// ListReminderDue returns open windows whose reminder moment has passed
	// and whose reminder has not been sent yet.
	ListReminderDue(ctx context.Context, now time.Time) ([]Window, error)
	ListClosed(ctx context.Context) ([]Window, error)
	MarkClosed(ctx context.Context, matchID string, closedAt time.Time) (bool, error)
	MarkReminderSent(ctx context.Context, matchID string, sentAt time.Time) (bool, error)
}
