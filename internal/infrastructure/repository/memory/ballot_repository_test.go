package memory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/matchdayhq/matchday/internal/domain/ballot"
	"github.com/matchdayhq/matchday/internal/domain/votingwindow"
)

func picks() []ballot.Pick {
	return []ballot.Pick{
		{PlayerID: "pl-doyle", Points: 3},
		{PlayerID: "pl-mensah", Points: 2},
		{PlayerID: "pl-kovacs", Points: 1},
	}
}

func TestBallotRepository_Create_GateAndUniqueness(t *testing.T) {
	t.Parallel()

	opensAt := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	windows := NewVotingWindowRepository()
	err := windows.Create(context.Background(), votingwindow.Window{
		MatchID:  "mt-sun-001",
		OpensAt:  opensAt,
		ClosesAt: opensAt.AddDate(0, 0, 5),
		RemindAt: opensAt.AddDate(0, 0, 4),
	})
	if err != nil {
		t.Fatalf("create window: %v", err)
	}

	repo := NewBallotRepository(windows)

	item := ballot.Ballot{
		ID:        "b1",
		MatchID:   "mt-sun-001",
		VoterID:   "pl-harris",
		Picks:     picks(),
		CreatedAt: opensAt.Add(time.Hour),
	}
	if err := repo.Create(context.Background(), item); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := repo.Create(context.Background(), item); !errors.Is(err, ballot.ErrAlreadyCast) {
		t.Fatalf("expected ErrAlreadyCast, got %v", err)
	}

	late := item
	late.VoterID = "pl-okafor"
	late.CreatedAt = opensAt.AddDate(0, 0, 5)
	if err := repo.Create(context.Background(), late); !errors.Is(err, ballot.ErrWindowNotOpen) {
		t.Fatalf("expected ErrWindowNotOpen at the close boundary, got %v", err)
	}

	missing := item
	missing.MatchID = "mt-none"
	missing.VoterID = "pl-nowak"
	if err := repo.Create(context.Background(), missing); !errors.Is(err, ballot.ErrWindowNotOpen) {
		t.Fatalf("expected ErrWindowNotOpen without a window, got %v", err)
	}
}

func TestBallotRepository_Create_RacingClosure(t *testing.T) {
	t.Parallel()

	opensAt := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	closesAt := opensAt.AddDate(0, 0, 5)
	windows := NewVotingWindowRepository()
	if err := windows.Create(context.Background(), votingwindow.Window{
		MatchID:  "mt-sun-001",
		OpensAt:  opensAt,
		ClosesAt: closesAt,
		RemindAt: closesAt.AddDate(0, 0, -1),
	}); err != nil {
		t.Fatalf("create window: %v", err)
	}

	repo := NewBallotRepository(windows)

	// Half the ballots race the closure transition. Whatever interleaving
	// happens, a ballot either observes the window open and lands, or
	// observes it closed and is rejected; none land after MarkClosed wins.
	const voters = 16
	var rejected atomic.Int32
	var workers conc.WaitGroup
	for i := 0; i < voters; i++ {
		voterID := string(rune('a' + i))
		workers.Go(func() {
			err := repo.Create(context.Background(), ballot.Ballot{
				ID:        "b-" + voterID,
				MatchID:   "mt-sun-001",
				VoterID:   voterID,
				Picks:     picks(),
				CreatedAt: closesAt.Add(-time.Second),
			})
			if errors.Is(err, ballot.ErrWindowNotOpen) {
				rejected.Add(1)
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
	workers.Go(func() {
		if _, err := windows.MarkClosed(context.Background(), "mt-sun-001", closesAt); err != nil {
			t.Errorf("mark closed: %v", err)
		}
	})
	workers.Wait()

	stored, err := repo.ListByMatch(context.Background(), "mt-sun-001")
	if err != nil {
		t.Fatalf("ListByMatch error: %v", err)
	}
	if len(stored)+int(rejected.Load()) != voters {
		t.Fatalf("lost ballots: stored=%d rejected=%d", len(stored), rejected.Load())
	}

	// After the persisted closure, nothing gets in.
	err = repo.Create(context.Background(), ballot.Ballot{
		ID:        "b-late",
		MatchID:   "mt-sun-001",
		VoterID:   "late",
		Picks:     picks(),
		CreatedAt: closesAt.Add(-time.Second),
	})
	if !errors.Is(err, ballot.ErrWindowNotOpen) {
		t.Fatalf("expected ErrWindowNotOpen after closure, got %v", err)
	}
}
