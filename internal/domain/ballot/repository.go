package ballot

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyCast reports that the voter already has a ballot for the match.
	ErrAlreadyCast = errors.New("voter already cast a ballot for this match")
	// ErrWindowNotOpen reports that the voting window was no longer open at
	// write time. Implementations must enforce this inside the same critical
	// section or transaction as the uniqueness check, so a submission racing
	// the closure sweep cannot slip in after the window closed.
	ErrWindowNotOpen = errors.New("voting window is not open")
)

// Repository is the append-only ballot ledger.
type Repository interface {
	// Create inserts the ballot atomically: the (match, voter) uniqueness
	// check, the open-window re-check and the insert are one operation.
	Create(ctx context.Context, item Ballot) error
	ListByMatch(ctx context.Context, matchID string) ([]Ballot, error)
	GetByMatchAndVoter(ctx context.Context, matchID, voterID string) (Ballot, bool, error)
}
