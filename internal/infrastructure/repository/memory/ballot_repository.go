package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/matchdayhq/matchday/internal/domain/ballot"
)

// WindowGate answers whether a match's voting window accepts writes at a
// given instant.
type WindowGate interface {
	OpenAt(matchID string, at time.Time) bool
}

type BallotRepository struct {
	mu      sync.RWMutex
	byMatch map[string]map[string]ballot.Ballot
	gate    WindowGate
}

// NewBallotRepository builds the ledger. The gate is consulted under the
// ledger's own lock, so the open-window check and the uniqueness check commit
// together; a closure racing the insert cannot interleave between them.
func NewBallotRepository(gate WindowGate) *BallotRepository {
	return &BallotRepository{
		byMatch: make(map[string]map[string]ballot.Ballot),
		gate:    gate,
	}
}

func (r *BallotRepository) Create(_ context.Context, item ballot.Ballot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gate != nil && !r.gate.OpenAt(item.MatchID, item.CreatedAt) {
		return ballot.ErrWindowNotOpen
	}

	voters, ok := r.byMatch[item.MatchID]
	if !ok {
		voters = make(map[string]ballot.Ballot)
		r.byMatch[item.MatchID] = voters
	}
	if _, exists := voters[item.VoterID]; exists {
		return ballot.ErrAlreadyCast
	}

	voters[item.VoterID] = copyBallot(item)
	return nil
}

func (r *BallotRepository) ListByMatch(_ context.Context, matchID string) ([]ballot.Ballot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	voters := r.byMatch[matchID]
	out := make([]ballot.Ballot, 0, len(voters))
	for _, item := range voters {
		out = append(out, copyBallot(item))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].VoterID < out[j].VoterID
	})
	return out, nil
}

func (r *BallotRepository) GetByMatchAndVoter(_ context.Context, matchID, voterID string) (ballot.Ballot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byMatch[matchID][voterID]
	if !ok {
		return ballot.Ballot{}, false, nil
	}
	return copyBallot(item), true, nil
}

func copyBallot(item ballot.Ballot) ballot.Ballot {
	out := item
	out.Picks = append([]ballot.Pick(nil), item.Picks...)
	return out
}
