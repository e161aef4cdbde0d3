package match

import "context"

// Repository exposes match persistence operations.
type Repository interface {
	List(ctx context.Context) ([]Match, error)
	ListByCompetition(ctx context.Context, competitionID string) ([]Match, error)
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	// Upsert stores the recorded result. Replays of the same match id replace
	// the stored row; double counting is prevented downstream by the
	// aggregation idempotency keys, not here.
	Upsert(ctx context.Context, item Match) error
}
