package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matchdayhq/matchday/internal/domain/ballot"
	"github.com/matchdayhq/matchday/internal/domain/competition"
	"github.com/matchdayhq/matchday/internal/domain/match"
	"github.com/matchdayhq/matchday/internal/domain/user"
	"github.com/matchdayhq/matchday/internal/domain/votingwindow"
	"github.com/matchdayhq/matchday/internal/platform/id"
)

type CastVoteInput struct {
	MatchID string
	VoterID string

	// VoterRole is the authenticated caller's role. Managers and admins
	// moderate their competitions and may vote without being on the roster.
	VoterRole string
	Picks     []ballot.Pick
}

// VoteService accepts ranked ballots. It gates on the derived window state
// up front for a friendly error, but the authoritative open check happens
// inside the ballot repository's atomic insert, so a vote racing the closure
// sweep can never land after the window closed.
type VoteService struct {
	competitionRepo competition.Repository
	matchRepo       match.Repository
	windowRepo      votingwindow.Repository
	ballotRepo      ballot.Repository
	idGen           id.Generator
	now             func() time.Time
}

func NewVoteService(
	competitionRepo competition.Repository,
	matchRepo match.Repository,
	windowRepo votingwindow.Repository,
	ballotRepo ballot.Repository,
	idGen id.Generator,
) *VoteService {
	if idGen == nil {
		idGen = id.NewRandomGenerator()
	}
	return &VoteService{
		competitionRepo: competitionRepo,
		matchRepo:       matchRepo,
		windowRepo:      windowRepo,
		ballotRepo:      ballotRepo,
		idGen:           idGen,
		now:             time.Now,
	}
}

func (s *VoteService) CastVote(ctx context.Context, input CastVoteInput) (ballot.Ballot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.VoteService.CastVote")
	defer span.End()

	input.MatchID = strings.TrimSpace(input.MatchID)
	input.VoterID = strings.TrimSpace(input.VoterID)
	if input.MatchID == "" {
		return ballot.Ballot{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if input.VoterID == "" {
		return ballot.Ballot{}, fmt.Errorf("%w: voter id is required", ErrInvalidInput)
	}
	if err := ballot.ValidateRanking(input.Picks); err != nil {
		return ballot.Ballot{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		return ballot.Ballot{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return ballot.Ballot{}, fmt.Errorf("%w: match=%s", ErrNotFound, input.MatchID)
	}

	comp, exists, err := s.competitionRepo.GetByID(ctx, item.CompetitionID)
	if err != nil {
		return ballot.Ballot{}, fmt.Errorf("get competition: %w", err)
	}
	if !exists {
		return ballot.Ballot{}, fmt.Errorf("%w: competition=%s", ErrNotFound, item.CompetitionID)
	}
	if !comp.VotingEnabled {
		return ballot.Ballot{}, fmt.Errorf("%w: competition=%s", ErrVotingDisabled, comp.ID)
	}

	window, exists, err := s.windowRepo.GetByMatch(ctx, input.MatchID)
	if err != nil {
		return ballot.Ballot{}, fmt.Errorf("get voting window: %w", err)
	}
	if !exists {
		return ballot.Ballot{}, fmt.Errorf("%w: match=%s", ErrVotingNotStarted, input.MatchID)
	}

	now := s.now().UTC()
	switch window.StateAt(now) {
	case votingwindow.StateNotStarted:
		return ballot.Ballot{}, fmt.Errorf("%w: opens at %s", ErrVotingNotStarted, window.OpensAt.Format(time.RFC3339))
	case votingwindow.StateClosed:
		return ballot.Ballot{}, fmt.Errorf("%w: closed at %s", ErrVotingClosed, window.ClosesAt.Format(time.RFC3339))
	}

	if err := s.checkEligibility(item, comp, input); err != nil {
		return ballot.Ballot{}, err
	}

	ballotID, err := s.idGen.NewID()
	if err != nil {
		return ballot.Ballot{}, fmt.Errorf("generate ballot id: %w", err)
	}

	created := ballot.Ballot{
		ID:        ballotID,
		MatchID:   input.MatchID,
		VoterID:   input.VoterID,
		Picks:     append([]ballot.Pick(nil), input.Picks...),
		CreatedAt: now,
	}
	if err := s.ballotRepo.Create(ctx, created); err != nil {
		switch {
		case errors.Is(err, ballot.ErrAlreadyCast):
			return ballot.Ballot{}, fmt.Errorf("%w: match=%s voter=%s", ErrDuplicateVote, input.MatchID, input.VoterID)
		case errors.Is(err, ballot.ErrWindowNotOpen):
			return ballot.Ballot{}, fmt.Errorf("%w: match=%s", ErrVotingClosed, input.MatchID)
		default:
			return ballot.Ballot{}, fmt.Errorf("create ballot: %w", err)
		}
	}

	return created, nil
}

func (s *VoteService) GetBallot(ctx context.Context, matchID, voterID string) (ballot.Ballot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.VoteService.GetBallot")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	voterID = strings.TrimSpace(voterID)
	if matchID == "" || voterID == "" {
		return ballot.Ballot{}, fmt.Errorf("%w: match id and voter id are required", ErrInvalidInput)
	}

	item, exists, err := s.ballotRepo.GetByMatchAndVoter(ctx, matchID, voterID)
	if err != nil {
		return ballot.Ballot{}, fmt.Errorf("get ballot: %w", err)
	}
	if !exists {
		return ballot.Ballot{}, fmt.Errorf("%w: ballot match=%s voter=%s", ErrNotFound, matchID, voterID)
	}
	return item, nil
}

// checkEligibility enforces the voting rules: the voter must have played the
// match or moderate the competition, every pick must name a player who
// played, nobody votes for themselves, and own-team picks are rejected unless
// the competition allows them. Moderators may pick any participant, so the
// own-team restriction never binds them.
func (s *VoteService) checkEligibility(item match.Match, comp competition.Competition, input CastVoteInput) error {
	moderator := user.CanModerate(input.VoterRole)
	voter, onRoster := item.ParticipantByPlayer(input.VoterID)
	if !onRoster && !moderator {
		return fmt.Errorf("%w: voter=%s match=%s", ErrVoterNotEligible, input.VoterID, item.ID)
	}

	for _, pick := range input.Picks {
		picked, ok := item.ParticipantByPlayer(pick.PlayerID)
		if !ok {
			return fmt.Errorf("%w: player %s did not play in match %s", ErrInvalidInput, pick.PlayerID, item.ID)
		}
		if pick.PlayerID == input.VoterID {
			return fmt.Errorf("%w: voter=%s", ErrSelfVote, input.VoterID)
		}
		if moderator || !onRoster {
			continue
		}
		if !comp.AllowOwnTeamVotes && picked.TeamID == voter.TeamID {
			return fmt.Errorf("%w: player=%s team=%s", ErrOwnTeamPick, pick.PlayerID, picked.TeamID)
		}
	}

	return nil
}
