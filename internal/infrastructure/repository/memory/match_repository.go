package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/matchdayhq/matchday/internal/domain/match"
)

type MatchRepository struct {
	mu    sync.RWMutex
	items map[string]match.Match
}

func NewMatchRepository(matches []match.Match) *MatchRepository {
	items := make(map[string]match.Match, len(matches))
	for _, item := range matches {
		items[item.ID] = copyMatch(item)
	}
	return &MatchRepository{items: items}
}

func (r *MatchRepository) List(_ context.Context) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, copyMatch(item))
	}
	sortMatches(out)
	return out, nil
}

func (r *MatchRepository) ListByCompetition(_ context.Context, competitionID string) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.items {
		if item.CompetitionID == competitionID {
			out = append(out, copyMatch(item))
		}
	}
	sortMatches(out)
	return out, nil
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[matchID]
	if !ok {
		return match.Match{}, false, nil
	}
	return copyMatch(item), true, nil
}

func (r *MatchRepository) Upsert(_ context.Context, item match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = copyMatch(item)
	return nil
}

func sortMatches(items []match.Match) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CompletedAt.Equal(items[j].CompletedAt) {
			return items[i].CompletedAt.Before(items[j].CompletedAt)
		}
		return items[i].ID < items[j].ID
	})
}

func copyMatch(item match.Match) match.Match {
	out := item
	if item.HomePenalties != nil {
		value := *item.HomePenalties
		out.HomePenalties = &value
	}
	if item.AwayPenalties != nil {
		value := *item.AwayPenalties
		out.AwayPenalties = &value
	}
	out.Roster = append([]match.Participant(nil), item.Roster...)
	return out
}
