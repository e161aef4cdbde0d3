package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/matchdayhq/matchday/internal/domain/ballot"
	"github.com/matchdayhq/matchday/internal/domain/competition"
	"github.com/matchdayhq/matchday/internal/domain/match"
	"github.com/matchdayhq/matchday/internal/domain/votingwindow"
	"github.com/matchdayhq/matchday/internal/platform/logging"
)

const defaultSweepWorkers = 4

// VotingStatus is the externally visible snapshot of one match's voting
// window, with the state derived from the clock at read time.
type VotingStatus struct {
	MatchID     string
	State       string
	OpensAt     time.Time
	ClosesAt    time.Time
	RemindAt    time.Time
	BallotCount int

	// PendingVoterIDs lists roster players who have not cast a ballot yet,
	// in roster order.
	PendingVoterIDs []string
	ClosedAt        *time.Time
}

// SweepResult reports what one sweep pass actually did. Counts cover only
// transitions this pass won; windows finalized by a concurrent reader or an
// overlapping sweep are not double counted.
type SweepResult struct {
	ClosedCount   int `json:"closed_count"`
	ReminderCount int `json:"reminder_count"`
}

// VotingWindowService owns the window lifecycle. State is never stored hot:
// reads derive it from timestamps, and the persisted closure transition
// happens at most once, either lazily on a read past the deadline or through
// the periodic sweep, whichever comes first.
type VotingWindowService struct {
	windowRepo   votingwindow.Repository
	ballotRepo   ballot.Repository
	matchRepo    match.Repository
	statsSvc     *StatsService
	notifier     Notifier
	logger       *logging.Logger
	now          func() time.Time
	sweepWorkers int
}

func NewVotingWindowService(
	windowRepo votingwindow.Repository,
	ballotRepo ballot.Repository,
	matchRepo match.Repository,
	statsSvc *StatsService,
	notifier Notifier,
	logger *logging.Logger,
) *VotingWindowService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &VotingWindowService{
		windowRepo:   windowRepo,
		ballotRepo:   ballotRepo,
		matchRepo:    matchRepo,
		statsSvc:     statsSvc,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
		sweepWorkers: defaultSweepWorkers,
	}
}

// OpenForMatch creates the voting window for a freshly completed match. If
// the window already exists, the stored one wins: re-posting a result never
// moves voting deadlines.
func (s *VotingWindowService) OpenForMatch(ctx context.Context, item match.Match, comp competition.Competition) (votingwindow.Window, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.VotingWindowService.OpenForMatch")
	defer span.End()

	if !comp.VotingEnabled {
		return votingwindow.Window{}, fmt.Errorf("%w: competition=%s", ErrVotingDisabled, comp.ID)
	}

	existing, exists, err := s.windowRepo.GetByMatch(ctx, item.ID)
	if err != nil {
		return votingwindow.Window{}, fmt.Errorf("get voting window: %w", err)
	}
	if exists {
		return existing, nil
	}

	opensAt := item.CompletedAt.UTC()
	closesAt := opensAt.AddDate(0, 0, comp.EffectiveVotingPeriodDays())
	remindAt := closesAt.AddDate(0, 0, -comp.ReminderDays)
	if remindAt.Before(opensAt) {
		remindAt = opensAt
	}

	window := votingwindow.Window{
		MatchID:       item.ID,
		CompetitionID: item.CompetitionID,
		OpensAt:       opensAt,
		ClosesAt:      closesAt,
		RemindAt:      remindAt,
	}
	if err := s.windowRepo.Create(ctx, window); err != nil {
		return votingwindow.Window{}, fmt.Errorf("create voting window: %w", err)
	}

	if err := s.notifier.VotingOpened(ctx, votingEvent(window)); err != nil {
		s.logger.WarnContext(ctx, "voting opened notification failed", "match_id", window.MatchID, "error", err)
	}

	return window, nil
}

// Status returns the window snapshot for a match. A read past the close
// deadline finalizes the window on the spot, so callers always observe the
// closure side effects as already done or in flight, never skipped.
func (s *VotingWindowService) Status(ctx context.Context, matchID string) (VotingStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.VotingWindowService.Status")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return VotingStatus{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	window, exists, err := s.windowRepo.GetByMatch(ctx, matchID)
	if err != nil {
		return VotingStatus{}, fmt.Errorf("get voting window: %w", err)
	}
	if !exists {
		return VotingStatus{}, fmt.Errorf("%w: voting window match=%s", ErrNotFound, matchID)
	}

	now := s.now().UTC()
	if window.StateAt(now) == votingwindow.StateClosed && window.ClosedAt == nil {
		if err := s.finalize(ctx, window, now); err != nil {
			return VotingStatus{}, err
		}
		window, _, err = s.windowRepo.GetByMatch(ctx, matchID)
		if err != nil {
			return VotingStatus{}, fmt.Errorf("reload voting window: %w", err)
		}
	}

	ballots, err := s.ballotRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return VotingStatus{}, fmt.Errorf("list ballots for status: %w", err)
	}

	item, _, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return VotingStatus{}, fmt.Errorf("get match for status: %w", err)
	}

	return VotingStatus{
		MatchID:         window.MatchID,
		State:           window.StateAt(now),
		OpensAt:         window.OpensAt,
		ClosesAt:        window.ClosesAt,
		RemindAt:        window.RemindAt,
		BallotCount:     len(ballots),
		PendingVoterIDs: pendingVoters(item, ballots),
		ClosedAt:        window.ClosedAt,
	}, nil
}

func pendingVoters(item match.Match, ballots []ballot.Ballot) []string {
	voted := make(map[string]struct{}, len(ballots))
	for _, b := range ballots {
		voted[b.VoterID] = struct{}{}
	}

	out := make([]string, 0, len(item.Roster))
	for _, participant := range item.Roster {
		if _, ok := voted[participant.PlayerID]; !ok {
			out = append(out, participant.PlayerID)
		}
	}
	return out
}

// Sweep finalizes every window past its deadline and fires due reminders.
// Closures fan out over a worker pool; each transition is claimed with a
// compare-and-set so overlapping sweeps never repeat side effects.
func (s *VotingWindowService) Sweep(ctx context.Context) (SweepResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.VotingWindowService.Sweep")
	defer span.End()

	now := s.now().UTC()

	due, err := s.windowRepo.ListCloseDue(ctx, now)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list close-due windows: %w", err)
	}

	var result SweepResult
	if len(due) > 0 {
		workerCount := s.sweepWorkers
		if workerCount > len(due) {
			workerCount = len(due)
		}
		workerPool, err := ants.NewPool(workerCount)
		if err != nil {
			return SweepResult{}, fmt.Errorf("create sweep worker pool: %w", err)
		}
		defer workerPool.Release()

		var closedCount atomic.Int32
		var workers sync.WaitGroup
		for _, window := range due {
			window := window
			workers.Add(1)
			if err := workerPool.Submit(func() {
				defer workers.Done()
				if err := s.finalize(ctx, window, now); err != nil {
					s.logger.ErrorContext(ctx, "finalize voting window failed", "match_id", window.MatchID, "error", err)
					return
				}
				closedCount.Add(1)
			}); err != nil {
				workers.Done()
				return SweepResult{}, fmt.Errorf("submit window closure to pool: %w", err)
			}
		}
		workers.Wait()
		result.ClosedCount = int(closedCount.Load())
	}

	reminders, err := s.windowRepo.ListReminderDue(ctx, now)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list reminder-due windows: %w", err)
	}
	for _, window := range reminders {
		won, err := s.windowRepo.MarkReminderSent(ctx, window.MatchID, now)
		if err != nil {
			return SweepResult{}, fmt.Errorf("mark reminder sent match=%s: %w", window.MatchID, err)
		}
		if !won {
			continue
		}
		if err := s.notifier.VotingReminder(ctx, votingEvent(window)); err != nil {
			s.logger.WarnContext(ctx, "voting reminder notification failed", "match_id", window.MatchID, "error", err)
		}
		result.ReminderCount++
	}

	return result, nil
}

// finalize claims the closure transition. Only the winner of the
// compare-and-set folds ratings and notifies; losers return having done
// nothing. The error path leaves the window closed with ratings unfolded,
// which the next sweep repairs through ApplyWindowClose idempotency.
func (s *VotingWindowService) finalize(ctx context.Context, window votingwindow.Window, now time.Time) error {
	won, err := s.windowRepo.MarkClosed(ctx, window.MatchID, now)
	if err != nil {
		return fmt.Errorf("mark window closed match=%s: %w", window.MatchID, err)
	}
	if !won {
		return nil
	}

	closedAt := now
	window.ClosedAt = &closedAt
	if err := s.statsSvc.ApplyWindowClose(ctx, window); err != nil {
		return err
	}

	if err := s.notifier.VotingClosed(ctx, votingEvent(window)); err != nil {
		s.logger.WarnContext(ctx, "voting closed notification failed", "match_id", window.MatchID, "error", err)
	}

	s.logger.InfoContext(ctx, "voting window closed", "match_id", window.MatchID, "competition_id", window.CompetitionID)
	return nil
}

func votingEvent(window votingwindow.Window) VotingEvent {
	return VotingEvent{
		MatchID:       window.MatchID,
		CompetitionID: window.CompetitionID,
		OpensAt:       window.OpensAt,
		ClosesAt:      window.ClosesAt,
	}
}
