package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/matchdayhq/matchday/internal/domain/votingwindow"
)

type VotingWindowRepository struct {
	mu    sync.RWMutex
	items map[string]votingwindow.Window
}

func NewVotingWindowRepository() *VotingWindowRepository {
	return &VotingWindowRepository{items: make(map[string]votingwindow.Window)}
}

func (r *VotingWindowRepository) GetByMatch(_ context.Context, matchID string) (votingwindow.Window, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[matchID]
	if !ok {
		return votingwindow.Window{}, false, nil
	}
	return copyWindow(item), true, nil
}

func (r *VotingWindowRepository) Create(_ context.Context, item votingwindow.Window) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.MatchID]; exists {
		return nil
	}
	r.items[item.MatchID] = copyWindow(item)
	return nil
}

func (r *VotingWindowRepository) ListCloseDue(_ context.Context, now time.Time) ([]votingwindow.Window, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]votingwindow.Window, 0)
	for _, item := range r.items {
		if item.ClosedAt == nil && !now.Before(item.ClosesAt) {
			out = append(out, copyWindow(item))
		}
	}
	sortWindows(out)
	return out, nil
}

func (r *VotingWindowRepository) ListReminderDue(_ context.Context, now time.Time) ([]votingwindow.Window, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]votingwindow.Window, 0)
	for _, item := range r.items {
		if item.ReminderDueAt(now) {
			out = append(out, copyWindow(item))
		}
	}
	sortWindows(out)
	return out, nil
}

func (r *VotingWindowRepository) ListClosed(_ context.Context) ([]votingwindow.Window, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]votingwindow.Window, 0)
	for _, item := range r.items {
		if item.ClosedAt != nil {
			out = append(out, copyWindow(item))
		}
	}
	sortWindows(out)
	return out, nil
}

func (r *VotingWindowRepository) MarkClosed(_ context.Context, matchID string, closedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[matchID]
	if !ok || item.ClosedAt != nil {
		return false, nil
	}
	item.ClosedAt = &closedAt
	r.items[matchID] = item
	return true, nil
}

func (r *VotingWindowRepository) MarkReminderSent(_ context.Context, matchID string, sentAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[matchID]
	if !ok || item.ReminderSentAt != nil {
		return false, nil
	}
	item.ReminderSentAt = &sentAt
	r.items[matchID] = item
	return true, nil
}

// OpenAt reports whether the window accepts ballots at the given instant. The
// ballot repository calls this inside its own critical section, making the
// open check part of the atomic insert.
func (r *VotingWindowRepository) OpenAt(matchID string, at time.Time) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[matchID]
	return ok && item.StateAt(at) == votingwindow.StateOpen
}

func sortWindows(items []votingwindow.Window) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].ClosesAt.Equal(items[j].ClosesAt) {
			return items[i].ClosesAt.Before(items[j].ClosesAt)
		}
		return items[i].MatchID < items[j].MatchID
	})
}

func copyWindow(item votingwindow.Window) votingwindow.Window {
	out := item
	if item.ReminderSentAt != nil {
		value := *item.ReminderSentAt
		out.ReminderSentAt = &value
	}
	if item.ClosedAt != nil {
		value := *item.ClosedAt
		out.ClosedAt = &value
	}
	return out
}
