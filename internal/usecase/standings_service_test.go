package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matchdayhq/matchday/internal/domain/competition"
	"github.com/matchdayhq/matchday/internal/domain/match"
	"github.com/matchdayhq/matchday/internal/domain/team"
)

func standingsFixture() (*stubCompetitionRepository, *stubTeamRepository, *stubMatchRepository) {
	competitionRepo := &stubCompetitionRepository{
		byID: map[string]competition.Competition{
			"sunday-league": {ID: "sunday-league", Name: "Sunday League", Type: competition.TypeLeague},
		},
	}
	teamRepo := &stubTeamRepository{
		byCompetition: map[string][]team.Team{
			"sunday-league": {
				{ID: "t1", CompetitionID: "sunday-league", Name: "Red Lion FC"},
				{ID: "t2", CompetitionID: "sunday-league", Name: "Crown & Anchor"},
				{ID: "t3", CompetitionID: "sunday-league", Name: "Borough Rovers"},
				{ID: "t4", CompetitionID: "sunday-league", Name: "Athletic Wanderers"},
			},
		},
	}
	return competitionRepo, teamRepo, newStubMatchRepository()
}

func addResult(matchRepo *stubMatchRepository, id, home, away string, homeScore, awayScore int) {
	_ = matchRepo.Upsert(context.Background(), match.Match{
		ID:            id,
		CompetitionID: "sunday-league",
		HomeTeamID:    home,
		AwayTeamID:    away,
		HomeScore:     homeScore,
		AwayScore:     awayScore,
		CompletedAt:   time.Date(2026, time.March, 8, 16, 0, 0, 0, time.UTC),
	})
}

func TestStandingsService_Table_Ordering(t *testing.T) {
	t.Parallel()

	competitionRepo, teamRepo, matchRepo := standingsFixture()

	// t1 and t2 finish level on points; t1 wins on goal difference.
	addResult(matchRepo, "f1", "t1", "t3", 4, 0)
	addResult(matchRepo, "f2", "t2", "t4", 2, 1)
	addResult(matchRepo, "f3", "t3", "t2", 1, 2)
	addResult(matchRepo, "f4", "t4", "t1", 0, 1)
	addResult(matchRepo, "f5", "t1", "t2", 1, 1)

	service := NewStandingsService(competitionRepo, teamRepo, matchRepo)
	got, err := service.Table(context.Background(), "sunday-league")
	if err != nil {
		t.Fatalf("Table error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(got))
	}

	if got[0].TeamID != "t1" || got[0].Points != 7 || got[0].Position != 1 {
		t.Fatalf("unexpected rank 1 row: %+v", got[0])
	}
	if got[0].GoalDifference != 5 {
		t.Fatalf("expected GD 5 for t1, got %d", got[0].GoalDifference)
	}
	if got[1].TeamID != "t2" || got[1].Points != 7 || got[1].Position != 2 {
		t.Fatalf("unexpected rank 2 row: %+v", got[1])
	}
	// t3 and t4 are both pointless; t4 ranks higher on goal difference.
	if got[2].TeamID != "t4" || got[2].Points != 0 || got[2].GoalDifference != -2 {
		t.Fatalf("unexpected rank 3 row: %+v", got[2])
	}
	if got[3].TeamID != "t3" || got[3].Points != 0 || got[3].GoalDifference != -6 {
		t.Fatalf("unexpected rank 4 row: %+v", got[3])
	}
}

func TestStandingsService_Table_NameBreaksFullTie(t *testing.T) {
	t.Parallel()

	competitionRepo, teamRepo, matchRepo := standingsFixture()

	// Two 1-1 draws give t1 and t2 identical points, GD and GF.
	addResult(matchRepo, "f1", "t1", "t3", 1, 1)
	addResult(matchRepo, "f2", "t2", "t4", 1, 1)

	service := NewStandingsService(competitionRepo, teamRepo, matchRepo)
	got, err := service.Table(context.Background(), "sunday-league")
	if err != nil {
		t.Fatalf("Table error: %v", err)
	}

	// All four rows are level; alphabetical names decide.
	wantOrder := []string{"Athletic Wanderers", "Borough Rovers", "Crown & Anchor", "Red Lion FC"}
	for idx, wantName := range wantOrder {
		if got[idx].TeamName != wantName {
			t.Fatalf("position %d: expected %s, got %s", idx+1, wantName, got[idx].TeamName)
		}
		if got[idx].Position != idx+1 {
			t.Fatalf("expected position %d, got %d", idx+1, got[idx].Position)
		}
	}
}

func TestStandingsService_Table_TeamsWithoutMatches(t *testing.T) {
	t.Parallel()

	competitionRepo, teamRepo, matchRepo := standingsFixture()
	service := NewStandingsService(competitionRepo, teamRepo, matchRepo)

	got, err := service.Table(context.Background(), "sunday-league")
	if err != nil {
		t.Fatalf("Table error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 zeroed rows, got %d", len(got))
	}
	for _, row := range got {
		if row.Played != 0 || row.Points != 0 {
			t.Fatalf("expected zeroed row, got %+v", row)
		}
	}
}

func TestStandingsService_Table_UnknownCompetition(t *testing.T) {
	t.Parallel()

	competitionRepo, teamRepo, matchRepo := standingsFixture()
	service := NewStandingsService(competitionRepo, teamRepo, matchRepo)

	_, err := service.Table(context.Background(), "midweek-cup")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
