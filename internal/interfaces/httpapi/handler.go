package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/matchdayhq/matchday/internal/domain/ballot"
	"github.com/matchdayhq/matchday/internal/domain/competition"
	"github.com/matchdayhq/matchday/internal/domain/match"
	"github.com/matchdayhq/matchday/internal/domain/playeraggregate"
	"github.com/matchdayhq/matchday/internal/domain/standing"
	"github.com/matchdayhq/matchday/internal/domain/user"
	"github.com/matchdayhq/matchday/internal/platform/logging"
	"github.com/matchdayhq/matchday/internal/usecase"
)

type Handler struct {
	matchService     *usecase.MatchService
	voteService      *usecase.VoteService
	windowService    *usecase.VotingWindowService
	statsService     *usecase.StatsService
	standingsService *usecase.StandingsService
	competitionRepo  competition.Repository
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	matchService *usecase.MatchService,
	voteService *usecase.VoteService,
	windowService *usecase.VotingWindowService,
	statsService *usecase.StatsService,
	standingsService *usecase.StandingsService,
	competitionRepo competition.Repository,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchService:     matchService,
		voteService:      voteService,
		windowService:    windowService,
		statsService:     statsService,
		standingsService: standingsService,
		competitionRepo:  competitionRepo,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListCompetitions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCompetitions")
	defer span.End()

	competitions, err := h.competitionRepo.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list competitions failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]competitionDTO, 0, len(competitions))
	for _, c := range competitions {
		items = append(items, competitionToDTO(c))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStandings")
	defer span.End()

	competitionID := r.PathValue("competitionID")
	table, err := h.standingsService.Table(ctx, competitionID)
	if err != nil {
		h.logger.WarnContext(ctx, "list standings failed", "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]standingDTO, 0, len(table))
	for _, row := range table {
		items = append(items, standingToDTO(row))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListMatchesByCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchesByCompetition")
	defer span.End()

	competitionID := r.PathValue("competitionID")
	matches, err := h.matchService.ListByCompetition(ctx, competitionID)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchDTO, 0, len(matches))
	for _, m := range matches {
		items = append(items, matchToDTO(m))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	item, err := h.matchService.GetByID(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) GetVotingStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetVotingStatus")
	defer span.End()

	matchID := r.PathValue("matchID")
	status, err := h.windowService.Status(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get voting status failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, votingStatusToDTO(status))
}

func (h *Handler) CastVote(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CastVote")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: missing principal", usecase.ErrUnauthorized))
		return
	}

	var req castVoteRequest
	if err := h.decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := r.PathValue("matchID")
	picks := make([]ballot.Pick, 0, len(req.Picks))
	for _, pick := range req.Picks {
		picks = append(picks, ballot.Pick{PlayerID: pick.PlayerID, Points: pick.Points})
	}

	item, err := h.voteService.CastVote(ctx, usecase.CastVoteInput{
		MatchID:   matchID,
		VoterID:   principal.ID,
		VoterRole: principal.Role,
		Picks:     picks,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "cast vote failed", "match_id", matchID, "voter_id", principal.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, ballotToDTO(item))
}

func (h *Handler) GetMyBallot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyBallot")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: missing principal", usecase.ErrUnauthorized))
		return
	}

	matchID := r.PathValue("matchID")
	item, err := h.voteService.GetBallot(ctx, matchID, principal.ID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ballotToDTO(item))
}

func (h *Handler) GetPlayerAggregate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerAggregate")
	defer span.End()

	playerID := r.PathValue("playerID")
	competitionID := strings.TrimSpace(r.URL.Query().Get("competition_id"))

	aggregate, err := h.statsService.GetAggregate(ctx, playerID, competitionID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player aggregate failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, aggregateToDTO(aggregate))
}

func (h *Handler) ListAggregatesByCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAggregatesByCompetition")
	defer span.End()

	competitionID := r.PathValue("competitionID")
	aggregates, err := h.statsService.ListByCompetition(ctx, competitionID)
	if err != nil {
		h.logger.WarnContext(ctx, "list aggregates failed", "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]aggregateDTO, 0, len(aggregates))
	for _, a := range aggregates {
		items = append(items, aggregateToDTO(a))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) RecordMatchResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordMatchResult")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: missing principal", usecase.ErrUnauthorized))
		return
	}
	if !user.CanModerate(principal.Role) {
		writeError(ctx, w, fmt.Errorf("%w: recording results requires a manager role", usecase.ErrUnauthorized))
		return
	}

	var req recordMatchResultRequest
	if err := h.decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input, err := req.toInput()
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.RecordResult(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "record match result failed",
			"competition_id", req.CompetitionID,
			"recorded_by", principal.ID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(item))
}

func (h *Handler) decodeRequest(r *http.Request, target any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type castVoteRequest struct {
	Picks []pickRequest `json:"picks" validate:"required,len=3,dive"`
}

type pickRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
	Points   int    `json:"points" validate:"required,min=1,max=3"`
}

type recordMatchResultRequest struct {
	MatchID       string               `json:"match_id"`
	CompetitionID string               `json:"competition_id" validate:"required"`
	HomeTeamID    string               `json:"home_team_id" validate:"required"`
	AwayTeamID    string               `json:"away_team_id" validate:"required"`
	HomeScore     int                  `json:"home_score" validate:"gte=0"`
	AwayScore     int                  `json:"away_score" validate:"gte=0"`
	HomePenalties *int                 `json:"home_penalties,omitempty"`
	AwayPenalties *int                 `json:"away_penalties,omitempty"`
	CompletedAt   string               `json:"completed_at,omitempty"`
	Roster        []participantRequest `json:"roster" validate:"required,min=1,dive"`
}

type participantRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
	TeamID   string `json:"team_id" validate:"required"`
	Side     string `json:"side" validate:"required,oneof=HOME AWAY"`
	Goals    int    `json:"goals" validate:"gte=0"`
	Assists  int    `json:"assists" validate:"gte=0"`
	Starter  bool   `json:"starter"`
}

func (req recordMatchResultRequest) toInput() (usecase.MatchResultInput, error) {
	var completedAt time.Time
	if strings.TrimSpace(req.CompletedAt) != "" {
		parsed, err := time.Parse(time.RFC3339, req.CompletedAt)
		if err != nil {
			return usecase.MatchResultInput{}, fmt.Errorf("%w: completed_at must be RFC3339: %v", usecase.ErrInvalidInput, err)
		}
		completedAt = parsed
	}

	roster := make([]usecase.ParticipantInput, 0, len(req.Roster))
	for _, p := range req.Roster {
		roster = append(roster, usecase.ParticipantInput{
			PlayerID: p.PlayerID,
			TeamID:   p.TeamID,
			Side:     p.Side,
			Goals:    p.Goals,
			Assists:  p.Assists,
			Starter:  p.Starter,
		})
	}

	return usecase.MatchResultInput{
		MatchID:       req.MatchID,
		CompetitionID: req.CompetitionID,
		HomeTeamID:    req.HomeTeamID,
		AwayTeamID:    req.AwayTeamID,
		HomeScore:     req.HomeScore,
		AwayScore:     req.AwayScore,
		HomePenalties: req.HomePenalties,
		AwayPenalties: req.AwayPenalties,
		CompletedAt:   completedAt,
		Roster:        roster,
	}, nil
}

type competitionDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Type              string `json:"type"`
	VotingEnabled     bool   `json:"votingEnabled"`
	VotingPeriodDays  int    `json:"votingPeriodDays"`
	AllowOwnTeamVotes bool   `json:"allowOwnTeamVotes"`
}

type standingDTO struct {
	Position       int    `json:"position"`
	TeamID         string `json:"teamId"`
	TeamName       string `json:"teamName"`
	Played         int    `json:"played"`
	Wins           int    `json:"wins"`
	Draws          int    `json:"draws"`
	Losses         int    `json:"losses"`
	GoalsFor       int    `json:"goalsFor"`
	GoalsAgainst   int    `json:"goalsAgainst"`
	GoalDifference int    `json:"goalDifference"`
	Points         int    `json:"points"`
}

type matchDTO struct {
	ID            string           `json:"id"`
	CompetitionID string           `json:"competitionId"`
	HomeTeamID    string           `json:"homeTeamId"`
	AwayTeamID    string           `json:"awayTeamId"`
	HomeScore     int              `json:"homeScore"`
	AwayScore     int              `json:"awayScore"`
	HomePenalties *int             `json:"homePenalties,omitempty"`
	AwayPenalties *int             `json:"awayPenalties,omitempty"`
	CompletedAt   string           `json:"completedAt"`
	Roster        []participantDTO `json:"roster"`
}

type participantDTO struct {
	PlayerID string `json:"playerId"`
	TeamID   string `json:"teamId"`
	Side     string `json:"side"`
	Goals    int    `json:"goals"`
	Assists  int    `json:"assists"`
	Starter  bool   `json:"starter"`
}

type votingStatusDTO struct {
	MatchID         string   `json:"matchId"`
	State           string   `json:"state"`
	OpensAt         string   `json:"opensAt"`
	ClosesAt        string   `json:"closesAt"`
	RemindAt        string   `json:"remindAt"`
	BallotCount     int      `json:"ballotCount"`
	PendingVoterIDs []string `json:"pendingVoterIds"`
	ClosedAt        string   `json:"closedAt,omitempty"`
}

type ballotDTO struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"matchId"`
	VoterID   string    `json:"voterId"`
	Picks     []pickDTO `json:"picks"`
	CreatedAt string    `json:"createdAt"`
}

type pickDTO struct {
	PlayerID string `json:"playerId"`
	Points   int    `json:"points"`
}

type aggregateDTO struct {
	PlayerID      string `json:"playerId"`
	CompetitionID string `json:"competitionId,omitempty"`
	TotalGoals    int    `json:"totalGoals"`
	TotalAssists  int    `json:"totalAssists"`
	TotalMatches  int    `json:"totalMatches"`
	CurrentRating int    `json:"currentRating"`
}

func competitionToDTO(v competition.Competition) competitionDTO {
	return competitionDTO{
		ID:                v.ID,
		Name:              v.Name,
		Type:              v.Type,
		VotingEnabled:     v.VotingEnabled,
		VotingPeriodDays:  v.EffectiveVotingPeriodDays(),
		AllowOwnTeamVotes: v.AllowOwnTeamVotes,
	}
}

func standingToDTO(v standing.TeamStanding) standingDTO {
	return standingDTO{
		Position:       v.Position,
		TeamID:         v.TeamID,
		TeamName:       v.TeamName,
		Played:         v.Played,
		Wins:           v.Wins,
		Draws:          v.Draws,
		Losses:         v.Losses,
		GoalsFor:       v.GoalsFor,
		GoalsAgainst:   v.GoalsAgainst,
		GoalDifference: v.GoalDifference,
		Points:         v.Points,
	}
}

func matchToDTO(v match.Match) matchDTO {
	roster := make([]participantDTO, 0, len(v.Roster))
	for _, p := range v.Roster {
		roster = append(roster, participantDTO{
			PlayerID: p.PlayerID,
			TeamID:   p.TeamID,
			Side:     p.Side,
			Goals:    p.Goals,
			Assists:  p.Assists,
			Starter:  p.Starter,
		})
	}

	return matchDTO{
		ID:            v.ID,
		CompetitionID: v.CompetitionID,
		HomeTeamID:    v.HomeTeamID,
		AwayTeamID:    v.AwayTeamID,
		HomeScore:     v.HomeScore,
		AwayScore:     v.AwayScore,
		HomePenalties: v.HomePenalties,
		AwayPenalties: v.AwayPenalties,
		CompletedAt:   v.CompletedAt.UTC().Format(time.RFC3339),
		Roster:        roster,
	}
}

func votingStatusToDTO(v usecase.VotingStatus) votingStatusDTO {
	closedAt := ""
	if v.ClosedAt != nil && !v.ClosedAt.IsZero() {
		closedAt = v.ClosedAt.UTC().Format(time.RFC3339)
	}

	pending := v.PendingVoterIDs
	if pending == nil {
		pending = []string{}
	}

	return votingStatusDTO{
		MatchID:         v.MatchID,
		State:           v.State,
		OpensAt:         v.OpensAt.UTC().Format(time.RFC3339),
		ClosesAt:        v.ClosesAt.UTC().Format(time.RFC3339),
		RemindAt:        v.RemindAt.UTC().Format(time.RFC3339),
		BallotCount:     v.BallotCount,
		PendingVoterIDs: pending,
		ClosedAt:        closedAt,
	}
}

func ballotToDTO(v ballot.Ballot) ballotDTO {
	picks := make([]pickDTO, 0, len(v.Picks))
	for _, pick := range v.Picks {
		picks = append(picks, pickDTO{PlayerID: pick.PlayerID, Points: pick.Points})
	}

	return ballotDTO{
		ID:        v.ID,
		MatchID:   v.MatchID,
		VoterID:   v.VoterID,
		Picks:     picks,
		CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func aggregateToDTO(v playeraggregate.Aggregate) aggregateDTO {
	return aggregateDTO{
		PlayerID:      v.PlayerID,
		CompetitionID: v.CompetitionID,
		TotalGoals:    v.TotalGoals,
		TotalAssists:  v.TotalAssists,
		TotalMatches:  v.TotalMatches,
		CurrentRating: v.CurrentRating,
	}
}
