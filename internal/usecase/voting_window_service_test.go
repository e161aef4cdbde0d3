package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/matchdayhq/matchday/internal/domain/ballot"
	"github.com/matchdayhq/matchday/internal/domain/competition"
	"github.com/matchdayhq/matchday/internal/domain/match"
	"github.com/matchdayhq/matchday/internal/domain/votingwindow"
)

func newWindowServiceFixture(t *testing.T) (*VotingWindowService, *stubWindowRepository, *stubBallotRepository, *stubAggregateRepository, *recordingNotifier, time.Time) {
	t.Helper()

	windowRepo := newStubWindowRepository()
	ballotRepo := newStubBallotRepository()
	aggregateRepo := newStubAggregateRepository()
	matchRepo := newStubMatchRepository()
	notifier := &recordingNotifier{}

	statsSvc := NewStatsService(matchRepo, windowRepo, ballotRepo, aggregateRepo, nil)
	service := NewVotingWindowService(windowRepo, ballotRepo, matchRepo, statsSvc, notifier, nil)

	opensAt := time.Date(2026, time.March, 8, 16, 0, 0, 0, time.UTC)
	_ = matchRepo.Upsert(context.Background(), match.Match{
		ID:            "m1",
		CompetitionID: "sunday-league",
		HomeTeamID:    "t1",
		AwayTeamID:    "t2",
		HomeScore:     2,
		AwayScore:     1,
		CompletedAt:   opensAt,
		Roster: []match.Participant{
			{PlayerID: "p1", TeamID: "t1", Side: match.SideHome, Goals: 2, Starter: true},
			{PlayerID: "p2", TeamID: "t1", Side: match.SideHome, Starter: true},
			{PlayerID: "p4", TeamID: "t2", Side: match.SideAway, Goals: 1, Starter: true},
		},
	})
	_ = windowRepo.Create(context.Background(), votingwindow.Window{
		MatchID:       "m1",
		CompetitionID: "sunday-league",
		OpensAt:       opensAt,
		ClosesAt:      opensAt.AddDate(0, 0, 5),
		RemindAt:      opensAt.AddDate(0, 0, 4),
	})

	return service, windowRepo, ballotRepo, aggregateRepo, notifier, opensAt
}

func castTestBallot(t *testing.T, repo *stubBallotRepository, matchID, voterID string, at time.Time) {
	t.Helper()
	err := repo.Create(context.Background(), ballot.Ballot{
		ID:      "b-" + voterID,
		MatchID: matchID,
		VoterID: voterID,
		Picks: []ballot.Pick{
			{PlayerID: "p4", Points: 3},
			{PlayerID: "p5", Points: 2},
			{PlayerID: "p6", Points: 1},
		},
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("create ballot: %v", err)
	}
}

func TestVotingWindowService_Status_DerivesState(t *testing.T) {
	t.Parallel()

	service, _, ballotRepo, _, _, opensAt := newWindowServiceFixture(t)
	castTestBallot(t, ballotRepo, "m1", "p1", opensAt.Add(time.Hour))

	tests := []struct {
		name      string
		at        time.Time
		wantState string
	}{
		{name: "before open", at: opensAt.Add(-time.Minute), wantState: votingwindow.StateNotStarted},
		{name: "at open", at: opensAt, wantState: votingwindow.StateOpen},
		{name: "mid window", at: opensAt.AddDate(0, 0, 2), wantState: votingwindow.StateOpen},
		{name: "just before close", at: opensAt.AddDate(0, 0, 5).Add(-time.Second), wantState: votingwindow.StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := clockwork.NewFakeClockAt(tt.at)
			service.now = clock.Now

			got, err := service.Status(context.Background(), "m1")
			if err != nil {
				t.Fatalf("Status error: %v", err)
			}
			if got.State != tt.wantState {
				t.Fatalf("expected state %s, got %s", tt.wantState, got.State)
			}
			if got.BallotCount != 1 {
				t.Fatalf("expected 1 ballot, got %d", got.BallotCount)
			}
		})
	}
}

func TestVotingWindowService_Status_PendingVoters(t *testing.T) {
	t.Parallel()

	service, _, ballotRepo, _, _, opensAt := newWindowServiceFixture(t)
	clock := clockwork.NewFakeClockAt(opensAt.Add(time.Hour))
	service.now = clock.Now

	got, err := service.Status(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Status error: %v", err)
	}
	if !reflect.DeepEqual(got.PendingVoterIDs, []string{"p1", "p2", "p4"}) {
		t.Fatalf("expected full roster pending, got %v", got.PendingVoterIDs)
	}

	castTestBallot(t, ballotRepo, "m1", "p1", opensAt.Add(time.Hour))

	got, err = service.Status(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Status error: %v", err)
	}
	if !reflect.DeepEqual(got.PendingVoterIDs, []string{"p2", "p4"}) {
		t.Fatalf("expected p2 and p4 pending after p1 voted, got %v", got.PendingVoterIDs)
	}
	if got.BallotCount != 1 {
		t.Fatalf("expected 1 ballot, got %d", got.BallotCount)
	}
}

func TestVotingWindowService_Status_UnknownMatch(t *testing.T) {
	t.Parallel()

	service, _, _, _, _, _ := newWindowServiceFixture(t)

	_, err := service.Status(context.Background(), "m999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVotingWindowService_Status_LazyCloseFoldsRatings(t *testing.T) {
	t.Parallel()

	service, windowRepo, ballotRepo, aggregateRepo, notifier, opensAt := newWindowServiceFixture(t)
	castTestBallot(t, ballotRepo, "m1", "p1", opensAt.Add(time.Hour))

	clock := clockwork.NewFakeClockAt(opensAt.AddDate(0, 0, 5))
	service.now = clock.Now

	got, err := service.Status(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Status error: %v", err)
	}
	if got.State != votingwindow.StateClosed {
		t.Fatalf("expected CLOSED, got %s", got.State)
	}
	if got.ClosedAt == nil {
		t.Fatalf("expected persisted closure")
	}

	window, _, _ := windowRepo.GetByMatch(context.Background(), "m1")
	if window.ClosedAt == nil {
		t.Fatalf("expected stored ClosedAt after lazy close")
	}

	row, exists, _ := aggregateRepo.Get(context.Background(), "p4", "sunday-league")
	if !exists || row.CurrentRating != 3 {
		t.Fatalf("expected rating 3 for p4, exists=%v row=%+v", exists, row)
	}
	if len(notifier.closed) != 1 || notifier.closed[0] != "m1" {
		t.Fatalf("expected one closed notification, got %v", notifier.closed)
	}
}

func TestVotingWindowService_Sweep_ClosesAndReminds(t *testing.T) {
	t.Parallel()

	service, windowRepo, ballotRepo, aggregateRepo, notifier, opensAt := newWindowServiceFixture(t)
	castTestBallot(t, ballotRepo, "m1", "p1", opensAt.Add(time.Hour))
	castTestBallot(t, ballotRepo, "m1", "p2", opensAt.Add(2*time.Hour))

	// Second window still inside its reminder span at sweep time.
	_ = windowRepo.Create(context.Background(), votingwindow.Window{
		MatchID:       "m2",
		CompetitionID: "sunday-league",
		OpensAt:       opensAt.AddDate(0, 0, 1),
		ClosesAt:      opensAt.AddDate(0, 0, 6),
		RemindAt:      opensAt.AddDate(0, 0, 5),
	})

	clock := clockwork.NewFakeClockAt(opensAt.AddDate(0, 0, 5).Add(time.Minute))
	service.now = clock.Now

	result, err := service.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep error: %v", err)
	}
	if result.ClosedCount != 1 {
		t.Fatalf("expected 1 closure, got %d", result.ClosedCount)
	}
	if result.ReminderCount != 1 {
		t.Fatalf("expected 1 reminder, got %d", result.ReminderCount)
	}
	if len(notifier.reminded) != 1 || notifier.reminded[0] != "m2" {
		t.Fatalf("expected reminder for m2, got %v", notifier.reminded)
	}

	// Two voters awarded p4 three points each; rating is the window tally.
	row, exists, _ := aggregateRepo.Get(context.Background(), "p4", "sunday-league")
	if !exists || row.CurrentRating != 6 {
		t.Fatalf("expected rating 6 for p4, exists=%v row=%+v", exists, row)
	}
	global, exists, _ := aggregateRepo.Get(context.Background(), "p4", "")
	if !exists || global.CurrentRating != 6 {
		t.Fatalf("expected global rating 6 for p4, got %+v", global)
	}

	// A second pass finds nothing left to do.
	again, err := service.Sweep(context.Background())
	if err != nil {
		t.Fatalf("second Sweep error: %v", err)
	}
	if again.ClosedCount != 0 || again.ReminderCount != 0 {
		t.Fatalf("expected idle second sweep, got %+v", again)
	}
	if len(notifier.reminded) != 1 || len(notifier.closed) != 1 {
		t.Fatalf("expected no repeated notifications, reminded=%v closed=%v", notifier.reminded, notifier.closed)
	}
}

func TestVotingWindowService_OpenForMatch(t *testing.T) {
	t.Parallel()

	service, windowRepo, _, _, notifier, _ := newWindowServiceFixture(t)

	comp := competition.Competition{
		ID:               "cup",
		Type:             competition.TypeKnockout,
		VotingEnabled:    true,
		VotingPeriodDays: 5,
		// Knockout rounds turn over quickly, so voting gets a shorter span.
		KnockoutVotingPeriodDays: 2,
		ReminderDays:             1,
	}
	completedAt := time.Date(2026, time.April, 12, 18, 30, 0, 0, time.UTC)
	item := match.Match{ID: "m7", CompetitionID: "cup", CompletedAt: completedAt}

	window, err := service.OpenForMatch(context.Background(), item, comp)
	if err != nil {
		t.Fatalf("OpenForMatch error: %v", err)
	}
	if !window.ClosesAt.Equal(completedAt.AddDate(0, 0, 2)) {
		t.Fatalf("expected knockout close after 2 days, got %v", window.ClosesAt)
	}
	if !window.RemindAt.Equal(completedAt.AddDate(0, 0, 1)) {
		t.Fatalf("unexpected remind at: %v", window.RemindAt)
	}
	if len(notifier.opened) != 1 || notifier.opened[0] != "m7" {
		t.Fatalf("expected opened notification, got %v", notifier.opened)
	}

	// Re-posting the result keeps the stored deadlines.
	again, err := service.OpenForMatch(context.Background(), item, comp)
	if err != nil {
		t.Fatalf("second OpenForMatch error: %v", err)
	}
	if !again.ClosesAt.Equal(window.ClosesAt) {
		t.Fatalf("expected unchanged deadlines, got %v", again.ClosesAt)
	}
	if len(notifier.opened) != 1 {
		t.Fatalf("expected no repeated opened notification, got %v", notifier.opened)
	}

	stored, exists, _ := windowRepo.GetByMatch(context.Background(), "m7")
	if !exists || stored.MatchID != "m7" {
		t.Fatalf("expected stored window, exists=%v", exists)
	}
}

func TestVotingWindowService_OpenForMatch_VotingDisabled(t *testing.T) {
	t.Parallel()

	service, _, _, _, _, _ := newWindowServiceFixture(t)

	_, err := service.OpenForMatch(context.Background(), match.Match{ID: "m9"}, competition.Competition{ID: "c", VotingEnabled: false})
	if !errors.Is(err, ErrVotingDisabled) {
		t.Fatalf("expected ErrVotingDisabled, got %v", err)
	}
}
