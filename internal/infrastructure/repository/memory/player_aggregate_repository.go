package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/matchdayhq/matchday/internal/domain/playeraggregate"
)

type aggregateKey struct {
	playerID      string
	competitionID string
}

type PlayerAggregateRepository struct {
	mu           sync.Mutex
	rows         map[aggregateKey]playeraggregate.Aggregate
	matchEvents  map[string]struct{}
	ratingEvents map[string]struct{}
}

func NewPlayerAggregateRepository() *PlayerAggregateRepository {
	return &PlayerAggregateRepository{
		rows:         make(map[aggregateKey]playeraggregate.Aggregate),
		matchEvents:  make(map[string]struct{}),
		ratingEvents: make(map[string]struct{}),
	}
}

func (r *PlayerAggregateRepository) Get(_ context.Context, playerID, competitionID string) (playeraggregate.Aggregate, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.rows[aggregateKey{playerID, competitionID}]
	if !ok {
		return playeraggregate.Aggregate{}, false, nil
	}
	return item, true, nil
}

func (r *PlayerAggregateRepository) ListByCompetition(_ context.Context, competitionID string) ([]playeraggregate.Aggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]playeraggregate.Aggregate, 0)
	for key, item := range r.rows {
		if key.competitionID == competitionID {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

func (r *PlayerAggregateRepository) ApplyMatchCompletion(_ context.Context, matchID, competitionID string, deltas []playeraggregate.Delta) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.matchEvents[matchID]; exists {
		return false, nil
	}
	r.matchEvents[matchID] = struct{}{}

	for _, delta := range deltas {
		for _, scope := range []string{competitionID, playeraggregate.GlobalScope} {
			key := aggregateKey{delta.PlayerID, scope}
			row := r.rows[key]
			row.PlayerID = delta.PlayerID
			row.CompetitionID = scope
			row.TotalGoals += delta.Goals
			row.TotalAssists += delta.Assists
			row.TotalMatches++
			r.rows[key] = row
		}
	}
	return true, nil
}

func (r *PlayerAggregateRepository) ApplyWindowRatings(_ context.Context, matchID, competitionID string, updates []playeraggregate.RatingUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ratingEvents[matchID]; exists {
		return false, nil
	}
	r.ratingEvents[matchID] = struct{}{}

	for _, update := range updates {
		for _, scope := range []string{competitionID, playeraggregate.GlobalScope} {
			key := aggregateKey{update.PlayerID, scope}
			row := r.rows[key]
			row.PlayerID = update.PlayerID
			row.CompetitionID = scope
			row.CurrentRating = update.Rating
			r.rows[key] = row
		}
	}
	return true, nil
}

func (r *PlayerAggregateRepository) ReplaceAll(_ context.Context, items []playeraggregate.Aggregate, matchEvents, ratingEvents []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows = make(map[aggregateKey]playeraggregate.Aggregate, len(items))
	for _, item := range items {
		r.rows[aggregateKey{item.PlayerID, item.CompetitionID}] = item
	}
	r.matchEvents = make(map[string]struct{}, len(matchEvents))
	for _, id := range matchEvents {
		r.matchEvents[id] = struct{}{}
	}
	r.ratingEvents = make(map[string]struct{}, len(ratingEvents))
	for _, id := range ratingEvents {
		r.ratingEvents[id] = struct{}{}
	}
	return nil
}
