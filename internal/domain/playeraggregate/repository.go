package playeraggregate

import "context"

// Repository persists folded player aggregates. The Apply methods are
// event-keyed and idempotent: each (kind, ref) pair is consumed at most once,
// and the consumed-marker write and the aggregate increments happen in one
// atomic unit. Replaying an already-consumed event returns applied=false and
// changes nothing.
type Repository interface {
	Get(ctx context.Context, playerID, competitionID string) (Aggregate, bool, error)
	ListByCompetition(ctx context.Context, competitionID string) ([]Aggregate, error)
	// ApplyMatchCompletion folds one match's goal, assist and appearance
	// deltas into the competition scope and the global scope, keyed by match.
	ApplyMatchCompletion(ctx context.Context, matchID, competitionID string, deltas []Delta) (applied bool, err error)
	// ApplyWindowRatings replaces current ratings from one closed window in
	// both the competition scope and the global scope, keyed by match.
	ApplyWindowRatings(ctx context.Context, matchID, competitionID string, updates []RatingUpdate) (applied bool, err error)
	// ReplaceAll swaps the entire aggregate table and its consumed-event
	// markers for the given state, used by full rebuilds.
	ReplaceAll(ctx context.Context, items []Aggregate, matchEvents, ratingEvents []string) error
}
