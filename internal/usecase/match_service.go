package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matchdayhq/matchday/internal/domain/competition"
	"github.com/matchdayhq/matchday/internal/domain/match"
	"github.com/matchdayhq/matchday/internal/platform/id"
	"github.com/matchdayhq/matchday/internal/platform/logging"
)

type ParticipantInput struct {
	PlayerID string
	TeamID   string
	Side     string
	Goals    int
	Assists  int
	Starter  bool
}

type MatchResultInput struct {
	MatchID       string
	CompetitionID string
	HomeTeamID    string
	AwayTeamID    string
	HomeScore     int
	AwayScore     int
	HomePenalties *int
	AwayPenalties *int
	CompletedAt   time.Time
	Roster        []ParticipantInput
}

// MatchService records final results. One RecordResult call is the single
// entry point that persists the match, opens its voting window and folds the
// roster into player aggregates; re-posting the same result is harmless.
type MatchService struct {
	competitionRepo competition.Repository
	matchRepo       match.Repository
	windowSvc       *VotingWindowService
	statsSvc        *StatsService
	idGen           id.Generator
	logger          *logging.Logger
	now             func() time.Time
}

func NewMatchService(
	competitionRepo competition.Repository,
	matchRepo match.Repository,
	windowSvc *VotingWindowService,
	statsSvc *StatsService,
	idGen id.Generator,
	logger *logging.Logger,
) *MatchService {
	if idGen == nil {
		idGen = id.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchService{
		competitionRepo: competitionRepo,
		matchRepo:       matchRepo,
		windowSvc:       windowSvc,
		statsSvc:        statsSvc,
		idGen:           idGen,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *MatchService) RecordResult(ctx context.Context, input MatchResultInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.RecordResult")
	defer span.End()

	comp, err := s.validateInput(ctx, &input)
	if err != nil {
		return match.Match{}, err
	}

	matchID := strings.TrimSpace(input.MatchID)
	if matchID == "" {
		matchID, err = s.idGen.NewID()
		if err != nil {
			return match.Match{}, fmt.Errorf("generate match id: %w", err)
		}
	}

	completedAt := input.CompletedAt
	if completedAt.IsZero() {
		completedAt = s.now()
	}
	completedAt = completedAt.UTC()

	roster := make([]match.Participant, 0, len(input.Roster))
	for _, row := range input.Roster {
		roster = append(roster, match.Participant{
			PlayerID: row.PlayerID,
			TeamID:   row.TeamID,
			Side:     row.Side,
			Goals:    row.Goals,
			Assists:  row.Assists,
			Starter:  row.Starter,
		})
	}

	item := match.Match{
		ID:            matchID,
		CompetitionID: input.CompetitionID,
		HomeTeamID:    input.HomeTeamID,
		AwayTeamID:    input.AwayTeamID,
		HomeScore:     input.HomeScore,
		AwayScore:     input.AwayScore,
		HomePenalties: input.HomePenalties,
		AwayPenalties: input.AwayPenalties,
		CompletedAt:   completedAt,
		Roster:        roster,
	}
	if err := s.matchRepo.Upsert(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("upsert match: %w", err)
	}

	if err := s.statsSvc.ApplyMatchCompletion(ctx, item); err != nil {
		return match.Match{}, err
	}

	if comp.VotingEnabled {
		if _, err := s.windowSvc.OpenForMatch(ctx, item, comp); err != nil {
			return match.Match{}, err
		}
	}

	s.logger.InfoContext(ctx, "match result recorded",
		"match_id", item.ID,
		"competition_id", item.CompetitionID,
		"score", fmt.Sprintf("%d-%d", item.HomeScore, item.AwayScore),
	)
	return item, nil
}

func (s *MatchService) GetByID(ctx context.Context, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.GetByID")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return item, nil
}

func (s *MatchService) ListByCompetition(ctx context.Context, competitionID string) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListByCompetition")
	defer span.End()

	competitionID = strings.TrimSpace(competitionID)
	if competitionID == "" {
		return nil, fmt.Errorf("%w: competition id is required", ErrInvalidInput)
	}

	items, err := s.matchRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return items, nil
}

func (s *MatchService) validateInput(ctx context.Context, input *MatchResultInput) (competition.Competition, error) {
	input.CompetitionID = strings.TrimSpace(input.CompetitionID)
	input.HomeTeamID = strings.TrimSpace(input.HomeTeamID)
	input.AwayTeamID = strings.TrimSpace(input.AwayTeamID)

	if input.CompetitionID == "" {
		return competition.Competition{}, fmt.Errorf("%w: competition id is required", ErrInvalidInput)
	}
	if input.HomeTeamID == "" || input.AwayTeamID == "" {
		return competition.Competition{}, fmt.Errorf("%w: home and away team ids are required", ErrInvalidInput)
	}
	if input.HomeTeamID == input.AwayTeamID {
		return competition.Competition{}, fmt.Errorf("%w: a team cannot play itself", ErrInvalidInput)
	}
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return competition.Competition{}, fmt.Errorf("%w: scores cannot be negative", ErrInvalidInput)
	}

	comp, exists, err := s.competitionRepo.GetByID(ctx, input.CompetitionID)
	if err != nil {
		return competition.Competition{}, fmt.Errorf("get competition: %w", err)
	}
	if !exists {
		return competition.Competition{}, fmt.Errorf("%w: competition=%s", ErrNotFound, input.CompetitionID)
	}

	if err := validatePenalties(*input, comp); err != nil {
		return competition.Competition{}, err
	}
	if err := validateRoster(*input); err != nil {
		return competition.Competition{}, err
	}

	return comp, nil
}

// validatePenalties allows a shootout result only on a drawn knockout tie.
func validatePenalties(input MatchResultInput, comp competition.Competition) error {
	hasPenalties := input.HomePenalties != nil || input.AwayPenalties != nil
	if !hasPenalties {
		return nil
	}
	if input.HomePenalties == nil || input.AwayPenalties == nil {
		return fmt.Errorf("%w: penalties require both sides", ErrInvalidInput)
	}
	if competition.NormalizeType(comp.Type) != competition.TypeKnockout {
		return fmt.Errorf("%w: penalties only apply to knockout matches", ErrInvalidInput)
	}
	if input.HomeScore != input.AwayScore {
		return fmt.Errorf("%w: penalties only apply to drawn matches", ErrInvalidInput)
	}
	if *input.HomePenalties < 0 || *input.AwayPenalties < 0 {
		return fmt.Errorf("%w: penalty scores cannot be negative", ErrInvalidInput)
	}
	if *input.HomePenalties == *input.AwayPenalties {
		return fmt.Errorf("%w: a shootout must produce a winner", ErrInvalidInput)
	}
	return nil
}

// validateRoster checks each participant row and caps per-side roster goals
// at the recorded score. The cap is one-directional: a shortfall is fine, own
// goals are credited to nobody.
func validateRoster(input MatchResultInput) error {
	seen := make(map[string]struct{}, len(input.Roster))
	goalsBySide := map[string]int{match.SideHome: 0, match.SideAway: 0}

	for _, row := range input.Roster {
		if strings.TrimSpace(row.PlayerID) == "" {
			return fmt.Errorf("%w: roster player id is required", ErrInvalidInput)
		}
		if strings.TrimSpace(row.TeamID) == "" {
			return fmt.Errorf("%w: roster team id is required for player %s", ErrInvalidInput, row.PlayerID)
		}
		if row.Side != match.SideHome && row.Side != match.SideAway {
			return fmt.Errorf("%w: unknown side %q for player %s", ErrInvalidInput, row.Side, row.PlayerID)
		}
		if _, exists := seen[row.PlayerID]; exists {
			return fmt.Errorf("%w: duplicate roster player %s", ErrInvalidInput, row.PlayerID)
		}
		seen[row.PlayerID] = struct{}{}

		if row.Goals < 0 || row.Assists < 0 {
			return fmt.Errorf("%w: negative stats for player %s", ErrInvalidInput, row.PlayerID)
		}
		goalsBySide[row.Side] += row.Goals
	}

	if goalsBySide[match.SideHome] > input.HomeScore {
		return fmt.Errorf("%w: home roster goals exceed home score", ErrInvalidInput)
	}
	if goalsBySide[match.SideAway] > input.AwayScore {
		return fmt.Errorf("%w: away roster goals exceed away score", ErrInvalidInput)
	}
	return nil
}
