package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/matchdayhq/matchday/internal/domain/ballot"
	"github.com/matchdayhq/matchday/internal/domain/competition"
	"github.com/matchdayhq/matchday/internal/domain/match"
	"github.com/matchdayhq/matchday/internal/domain/playeraggregate"
	"github.com/matchdayhq/matchday/internal/domain/team"
	"github.com/matchdayhq/matchday/internal/domain/votingwindow"
)

type stubCompetitionRepository struct {
	byID map[string]competition.Competition
}

func (s *stubCompetitionRepository) List(_ context.Context) ([]competition.Competition, error) {
	out := make([]competition.Competition, 0, len(s.byID))
	for _, item := range s.byID {
		out = append(out, item)
	}
	return out, nil
}

func (s *stubCompetitionRepository) GetByID(_ context.Context, competitionID string) (competition.Competition, bool, error) {
	item, ok := s.byID[competitionID]
	return item, ok, nil
}

type stubTeamRepository struct {
	byCompetition map[string][]team.Team
}

func (s *stubTeamRepository) ListByCompetition(_ context.Context, competitionID string) ([]team.Team, error) {
	items := s.byCompetition[competitionID]
	out := make([]team.Team, len(items))
	copy(out, items)
	return out, nil
}

func (s *stubTeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	for _, items := range s.byCompetition {
		for _, item := range items {
			if item.ID == teamID {
				return item, true, nil
			}
		}
	}
	return team.Team{}, false, nil
}

type stubMatchRepository struct {
	mu   sync.Mutex
	byID map[string]match.Match
}

func newStubMatchRepository() *stubMatchRepository {
	return &stubMatchRepository{byID: make(map[string]match.Match)}
}

func (s *stubMatchRepository) List(_ context.Context) ([]match.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]match.Match, 0, len(s.byID))
	for _, item := range s.byID {
		out = append(out, item)
	}
	return out, nil
}

func (s *stubMatchRepository) ListByCompetition(_ context.Context, competitionID string) ([]match.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]match.Match, 0)
	for _, item := range s.byID {
		if item.CompetitionID == competitionID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubMatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.byID[matchID]
	return item, ok, nil
}

func (s *stubMatchRepository) Upsert(_ context.Context, item match.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[item.ID] = item
	return nil
}

type stubWindowRepository struct {
	mu      sync.Mutex
	byMatch map[string]votingwindow.Window
}

func newStubWindowRepository() *stubWindowRepository {
	return &stubWindowRepository{byMatch: make(map[string]votingwindow.Window)}
}

func (s *stubWindowRepository) GetByMatch(_ context.Context, matchID string) (votingwindow.Window, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.byMatch[matchID]
	return item, ok, nil
}

func (s *stubWindowRepository) Create(_ context.Context, item votingwindow.Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byMatch[item.MatchID] = item
	return nil
}

func (s *stubWindowRepository) ListCloseDue(_ context.Context, now time.Time) ([]votingwindow.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]votingwindow.Window, 0)
	for _, item := range s.byMatch {
		if item.ClosedAt == nil && !now.Before(item.ClosesAt) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubWindowRepository) ListReminderDue(_ context.Context, now time.Time) ([]votingwindow.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]votingwindow.Window, 0)
	for _, item := range s.byMatch {
		if item.ReminderDueAt(now) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubWindowRepository) ListClosed(_ context.Context) ([]votingwindow.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]votingwindow.Window, 0)
	for _, item := range s.byMatch {
		if item.ClosedAt != nil {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubWindowRepository) MarkClosed(_ context.Context, matchID string, closedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.byMatch[matchID]
	if !ok || item.ClosedAt != nil {
		return false, nil
	}
	item.ClosedAt = &closedAt
	s.byMatch[matchID] = item
	return true, nil
}

func (s *stubWindowRepository) MarkReminderSent(_ context.Context, matchID string, sentAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.byMatch[matchID]
	if !ok || item.ReminderSentAt != nil {
		return false, nil
	}
	item.ReminderSentAt = &sentAt
	s.byMatch[matchID] = item
	return true, nil
}

type stubBallotRepository struct {
	mu      sync.Mutex
	byMatch map[string]map[string]ballot.Ballot
	gate    func(matchID string, at time.Time) bool
}

func newStubBallotRepository() *stubBallotRepository {
	return &stubBallotRepository{byMatch: make(map[string]map[string]ballot.Ballot)}
}

func (s *stubBallotRepository) Create(_ context.Context, item ballot.Ballot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate != nil && !s.gate(item.MatchID, item.CreatedAt) {
		return ballot.ErrWindowNotOpen
	}
	voters, ok := s.byMatch[item.MatchID]
	if !ok {
		voters = make(map[string]ballot.Ballot)
		s.byMatch[item.MatchID] = voters
	}
	if _, exists := voters[item.VoterID]; exists {
		return ballot.ErrAlreadyCast
	}
	voters[item.VoterID] = item
	return nil
}

func (s *stubBallotRepository) ListByMatch(_ context.Context, matchID string) ([]ballot.Ballot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ballot.Ballot, 0, len(s.byMatch[matchID]))
	for _, item := range s.byMatch[matchID] {
		out = append(out, item)
	}
	return out, nil
}

func (s *stubBallotRepository) GetByMatchAndVoter(_ context.Context, matchID, voterID string) (ballot.Ballot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.byMatch[matchID][voterID]
	return item, ok, nil
}

type aggregateKey struct {
	playerID      string
	competitionID string
}

type stubAggregateRepository struct {
	mu           sync.Mutex
	rows         map[aggregateKey]playeraggregate.Aggregate
	matchEvents  map[string]struct{}
	ratingEvents map[string]struct{}
}

func newStubAggregateRepository() *stubAggregateRepository {
	return &stubAggregateRepository{
		rows:         make(map[aggregateKey]playeraggregate.Aggregate),
		matchEvents:  make(map[string]struct{}),
		ratingEvents: make(map[string]struct{}),
	}
}

func (s *stubAggregateRepository) Get(_ context.Context, playerID, competitionID string) (playeraggregate.Aggregate, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.rows[aggregateKey{playerID, competitionID}]
	return item, ok, nil
}

func (s *stubAggregateRepository) ListByCompetition(_ context.Context, competitionID string) ([]playeraggregate.Aggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]playeraggregate.Aggregate, 0)
	for key, item := range s.rows {
		if key.competitionID == competitionID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubAggregateRepository) ApplyMatchCompletion(_ context.Context, matchID, competitionID string, deltas []playeraggregate.Delta) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.matchEvents[matchID]; exists {
		return false, nil
	}
	s.matchEvents[matchID] = struct{}{}
	for _, delta := range deltas {
		for _, scope := range []string{competitionID, playeraggregate.GlobalScope} {
			key := aggregateKey{delta.PlayerID, scope}
			row := s.rows[key]
			row.PlayerID = delta.PlayerID
			row.CompetitionID = scope
			row.TotalGoals += delta.Goals
			row.TotalAssists += delta.Assists
			row.TotalMatches++
			s.rows[key] = row
		}
	}
	return true, nil
}

func (s *stubAggregateRepository) ApplyWindowRatings(_ context.Context, matchID, competitionID string, updates []playeraggregate.RatingUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ratingEvents[matchID]; exists {
		return false, nil
	}
	s.ratingEvents[matchID] = struct{}{}
	for _, update := range updates {
		for _, scope := range []string{competitionID, playeraggregate.GlobalScope} {
			key := aggregateKey{update.PlayerID, scope}
			row := s.rows[key]
			row.PlayerID = update.PlayerID
			row.CompetitionID = scope
			row.CurrentRating = update.Rating
			s.rows[key] = row
		}
	}
	return true, nil
}

func (s *stubAggregateRepository) ReplaceAll(_ context.Context, items []playeraggregate.Aggregate, matchEvents, ratingEvents []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = make(map[aggregateKey]playeraggregate.Aggregate, len(items))
	for _, item := range items {
		s.rows[aggregateKey{item.PlayerID, item.CompetitionID}] = item
	}
	s.matchEvents = make(map[string]struct{}, len(matchEvents))
	for _, id := range matchEvents {
		s.matchEvents[id] = struct{}{}
	}
	s.ratingEvents = make(map[string]struct{}, len(ratingEvents))
	for _, id := range ratingEvents {
		s.ratingEvents[id] = struct{}{}
	}
	return nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	opened   []string
	reminded []string
	closed   []string
}

func (n *recordingNotifier) VotingOpened(_ context.Context, event VotingEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.opened = append(n.opened, event.MatchID)
	return nil
}

func (n *recordingNotifier) VotingReminder(_ context.Context, event VotingEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminded = append(n.reminded, event.MatchID)
	return nil
}

func (n *recordingNotifier) VotingClosed(_ context.Context, event VotingEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = append(n.closed, event.MatchID)
	return nil
}
