package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/matchdayhq/matchday/internal/domain/ballot"
	"github.com/matchdayhq/matchday/internal/domain/match"
	"github.com/matchdayhq/matchday/internal/domain/playeraggregate"
	"github.com/matchdayhq/matchday/internal/domain/votingwindow"
	"github.com/matchdayhq/matchday/internal/platform/logging"
)

const defaultRebuildFetchWorkers = 8

// StatsService folds match completions and voting window closures into player
// aggregates. Every fold is keyed by match, so replaying an event is a no-op
// and a full rebuild lands on the same numbers as the incremental path.
type StatsService struct {
	matchRepo     match.Repository
	windowRepo    votingwindow.Repository
	ballotRepo    ballot.Repository
	aggregateRepo playeraggregate.Repository
	logger        *logging.Logger
	now           func() time.Time
	fetchWorkers  int
}

func NewStatsService(
	matchRepo match.Repository,
	windowRepo votingwindow.Repository,
	ballotRepo ballot.Repository,
	aggregateRepo playeraggregate.Repository,
	logger *logging.Logger,
) *StatsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsService{
		matchRepo:     matchRepo,
		windowRepo:    windowRepo,
		ballotRepo:    ballotRepo,
		aggregateRepo: aggregateRepo,
		logger:        logger,
		now:           time.Now,
		fetchWorkers:  defaultRebuildFetchWorkers,
	}
}

// ApplyMatchCompletion folds one completed match's roster into the
// competition and global aggregates. Safe to call again for the same match.
func (s *StatsService) ApplyMatchCompletion(ctx context.Context, item match.Match) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.ApplyMatchCompletion")
	defer span.End()

	deltas := matchDeltas(item)
	if len(deltas) == 0 {
		return nil
	}

	applied, err := s.aggregateRepo.ApplyMatchCompletion(ctx, item.ID, item.CompetitionID, deltas)
	if err != nil {
		return fmt.Errorf("apply match completion match=%s: %w", item.ID, err)
	}
	if !applied {
		s.logger.DebugContext(ctx, "match completion already folded", "match_id", item.ID)
	}
	return nil
}

// ApplyWindowClose tallies the match's ballot ledger and replaces the current
// rating of every player who received points. Safe to call again for the same
// window.
func (s *StatsService) ApplyWindowClose(ctx context.Context, window votingwindow.Window) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.ApplyWindowClose")
	defer span.End()

	ballots, err := s.ballotRepo.ListByMatch(ctx, window.MatchID)
	if err != nil {
		return fmt.Errorf("list ballots for window close match=%s: %w", window.MatchID, err)
	}

	updates := ratingUpdates(ballot.Tally(ballots))
	applied, err := s.aggregateRepo.ApplyWindowRatings(ctx, window.MatchID, window.CompetitionID, updates)
	if err != nil {
		return fmt.Errorf("apply window ratings match=%s: %w", window.MatchID, err)
	}
	if !applied {
		s.logger.DebugContext(ctx, "window ratings already folded", "match_id", window.MatchID)
	}
	return nil
}

// GetAggregate returns one player's folded line for the given competition, or
// the global line when competitionID is empty. A player with no recorded
// activity gets a zeroed line, not an error.
func (s *StatsService) GetAggregate(ctx context.Context, playerID, competitionID string) (playeraggregate.Aggregate, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.GetAggregate")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return playeraggregate.Aggregate{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	competitionID = strings.TrimSpace(competitionID)

	item, exists, err := s.aggregateRepo.Get(ctx, playerID, competitionID)
	if err != nil {
		return playeraggregate.Aggregate{}, fmt.Errorf("get player aggregate: %w", err)
	}
	if !exists {
		return playeraggregate.Aggregate{PlayerID: playerID, CompetitionID: competitionID}, nil
	}
	return item, nil
}

func (s *StatsService) ListByCompetition(ctx context.Context, competitionID string) ([]playeraggregate.Aggregate, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.ListByCompetition")
	defer span.End()

	items, err := s.aggregateRepo.ListByCompetition(ctx, strings.TrimSpace(competitionID))
	if err != nil {
		return nil, fmt.Errorf("list player aggregates: %w", err)
	}
	return items, nil
}

// Rebuild recomputes every aggregate from the match log and the ballot ledger
// and swaps the stored state wholesale. The result is identical to what the
// incremental folds would have produced.
func (s *StatsService) Rebuild(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.Rebuild")
	defer span.End()

	matches, err := s.matchRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list matches for rebuild: %w", err)
	}

	byKey := make(map[string]*playeraggregate.Aggregate)
	upsert := func(playerID, competitionID string) *playeraggregate.Aggregate {
		key := playerID + "|" + competitionID
		row, ok := byKey[key]
		if !ok {
			row = &playeraggregate.Aggregate{PlayerID: playerID, CompetitionID: competitionID}
			byKey[key] = row
		}
		return row
	}

	matchEvents := make([]string, 0, len(matches))
	for _, item := range matches {
		if item.CompletedAt.IsZero() {
			continue
		}
		matchEvents = append(matchEvents, item.ID)
		for _, delta := range matchDeltas(item) {
			for _, scope := range []string{item.CompetitionID, playeraggregate.GlobalScope} {
				row := upsert(delta.PlayerID, scope)
				row.TotalGoals += delta.Goals
				row.TotalAssists += delta.Assists
				row.TotalMatches++
			}
		}
	}

	windows, err := s.windowRepo.ListClosed(ctx)
	if err != nil {
		return fmt.Errorf("list closed windows for rebuild: %w", err)
	}
	sort.SliceStable(windows, func(i, j int) bool {
		left, right := windows[i], windows[j]
		if !left.ClosedAt.Equal(*right.ClosedAt) {
			return left.ClosedAt.Before(*right.ClosedAt)
		}
		return left.MatchID < right.MatchID
	})

	ballotsByMatch := make(map[string][]ballot.Ballot, len(windows))
	var ballotsMu sync.Mutex
	fetchers := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(s.fetchWorkers)
	for _, window := range windows {
		window := window
		fetchers.Go(func(ctx context.Context) error {
			items, err := s.ballotRepo.ListByMatch(ctx, window.MatchID)
			if err != nil {
				return fmt.Errorf("list ballots for rebuild match=%s: %w", window.MatchID, err)
			}
			ballotsMu.Lock()
			ballotsByMatch[window.MatchID] = items
			ballotsMu.Unlock()
			return nil
		})
	}
	if err := fetchers.Wait(); err != nil {
		return err
	}

	ratingEvents := make([]string, 0, len(windows))
	for _, window := range windows {
		ratingEvents = append(ratingEvents, window.MatchID)
		for _, update := range ratingUpdates(ballot.Tally(ballotsByMatch[window.MatchID])) {
			for _, scope := range []string{window.CompetitionID, playeraggregate.GlobalScope} {
				upsert(update.PlayerID, scope).CurrentRating = update.Rating
			}
		}
	}

	items := make([]playeraggregate.Aggregate, 0, len(byKey))
	for _, row := range byKey {
		items = append(items, *row)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].PlayerID != items[j].PlayerID {
			return items[i].PlayerID < items[j].PlayerID
		}
		return items[i].CompetitionID < items[j].CompetitionID
	})

	conflicts, err := s.findReplayConflicts(ctx, items)
	if err != nil {
		return err
	}

	if err := s.aggregateRepo.ReplaceAll(ctx, items, matchEvents, ratingEvents); err != nil {
		return fmt.Errorf("replace aggregates: %w", err)
	}

	s.logger.InfoContext(ctx, "player aggregates rebuilt",
		"aggregate_count", len(items),
		"match_count", len(matchEvents),
		"window_count", len(ratingEvents),
		"conflict_count", conflicts,
	)
	return nil
}

// findReplayConflicts compares the replayed aggregates against the stored
// lines before they are swapped out. A mismatch means the incremental folds
// diverged from the event log; the wholesale replace that follows repairs the
// whole line, so conflicts are surfaced rather than returned as failures.
func (s *StatsService) findReplayConflicts(ctx context.Context, items []playeraggregate.Aggregate) (int, error) {
	conflicts := 0
	for _, item := range items {
		stored, exists, err := s.aggregateRepo.Get(ctx, item.PlayerID, item.CompetitionID)
		if err != nil {
			return 0, fmt.Errorf("verify aggregate player=%s competition=%q: %w", item.PlayerID, item.CompetitionID, err)
		}
		if !exists || stored == item {
			continue
		}
		conflicts++
		s.logger.WarnContext(ctx, "aggregate replay conflict",
			"player_id", item.PlayerID,
			"competition_id", item.CompetitionID,
			"stored", fmt.Sprintf("%+v", stored),
			"replayed", fmt.Sprintf("%+v", item),
			"error", ErrAggregateReplayConflict,
		)
	}
	return conflicts, nil
}

func matchDeltas(item match.Match) []playeraggregate.Delta {
	out := make([]playeraggregate.Delta, 0, len(item.Roster))
	for _, participant := range item.Roster {
		out = append(out, playeraggregate.Delta{
			PlayerID: participant.PlayerID,
			Goals:    participant.Goals,
			Assists:  participant.Assists,
		})
	}
	return out
}

func ratingUpdates(tally map[string]int) []playeraggregate.RatingUpdate {
	out := make([]playeraggregate.RatingUpdate, 0, len(tally))
	for playerID, points := range tally {
		out = append(out, playeraggregate.RatingUpdate{PlayerID: playerID, Rating: points})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}
