package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/matchdayhq/matchday/internal/domain/competition"
	"github.com/matchdayhq/matchday/internal/domain/match"
	"github.com/matchdayhq/matchday/internal/domain/standing"
	"github.com/matchdayhq/matchday/internal/domain/team"
)

// StandingsService computes league tables on demand from the match log.
// Nothing is persisted: two calls over the same matches always produce the
// same table.
type StandingsService struct {
	competitionRepo competition.Repository
	teamRepo        team.Repository
	matchRepo       match.Repository
}

func NewStandingsService(
	competitionRepo competition.Repository,
	teamRepo team.Repository,
	matchRepo match.Repository,
) *StandingsService {
	return &StandingsService{
		competitionRepo: competitionRepo,
		teamRepo:        teamRepo,
		matchRepo:       matchRepo,
	}
}

// Table ranks by points, then goal difference, then goals for, then name.
// Teams yet to play a match appear with zeroed rows.
func (s *StandingsService) Table(ctx context.Context, competitionID string) ([]standing.TeamStanding, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Table")
	defer span.End()

	competitionID = strings.TrimSpace(competitionID)
	if competitionID == "" {
		return nil, fmt.Errorf("%w: competition id is required", ErrInvalidInput)
	}

	_, exists, err := s.competitionRepo.GetByID(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("get competition: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: competition=%s", ErrNotFound, competitionID)
	}

	teams, err := s.teamRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("list teams for standings: %w", err)
	}
	matches, err := s.matchRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("list matches for standings: %w", err)
	}

	rows := make(map[string]*standing.TeamStanding, len(teams))
	for _, item := range teams {
		rows[item.ID] = &standing.TeamStanding{TeamID: item.ID, TeamName: item.Name}
	}
	rowFor := func(teamID string) *standing.TeamStanding {
		row, ok := rows[teamID]
		if !ok {
			// Match references a team the roster no longer lists; rank it
			// under its raw id rather than dropping its results.
			row = &standing.TeamStanding{TeamID: teamID, TeamName: teamID}
			rows[teamID] = row
		}
		return row
	}

	for _, item := range matches {
		if item.CompletedAt.IsZero() {
			continue
		}

		home := rowFor(item.HomeTeamID)
		away := rowFor(item.AwayTeamID)

		home.Played++
		away.Played++
		home.GoalsFor += item.HomeScore
		home.GoalsAgainst += item.AwayScore
		away.GoalsFor += item.AwayScore
		away.GoalsAgainst += item.HomeScore

		switch {
		case item.HomeScore > item.AwayScore:
			home.Wins++
			home.Points += 3
			away.Losses++
		case item.HomeScore < item.AwayScore:
			away.Wins++
			away.Points += 3
			home.Losses++
		default:
			home.Draws++
			away.Draws++
			home.Points++
			away.Points++
		}
	}

	out := make([]standing.TeamStanding, 0, len(rows))
	for _, row := range rows {
		row.GoalDifference = row.GoalsFor - row.GoalsAgainst
		out = append(out, *row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].GoalDifference != out[j].GoalDifference {
			return out[i].GoalDifference > out[j].GoalDifference
		}
		if out[i].GoalsFor != out[j].GoalsFor {
			return out[i].GoalsFor > out[j].GoalsFor
		}
		return out[i].TeamName < out[j].TeamName
	})

	for idx := range out {
		out[idx].Position = idx + 1
	}
	return out, nil
}
