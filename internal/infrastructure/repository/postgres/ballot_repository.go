package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/matchdayhq/matchday/internal/domain/ballot"
	"github.com/matchdayhq/matchday/internal/domain/votingwindow"
	qb "github.com/matchdayhq/matchday/internal/platform/querybuilder"
)

type BallotRepository struct {
	db *sqlx.DB
}

func NewBallotRepository(db *sqlx.DB) *BallotRepository {
	return &BallotRepository{db: db}
}

// Create inserts the ballot inside one transaction. The window row is locked
// first, so the open re-check serializes against the closure update; the
// unique index on (match, voter) turns a duplicate into ErrAlreadyCast.
func (r *BallotRepository) Create(ctx context.Context, item ballot.Ballot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for ballot insert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const windowQuery = `
SELECT opens_at, closes_at, closed_at
FROM voting_windows
WHERE match_public_id = $1
FOR UPDATE`

	var windowRow struct {
		OpensAt  time.Time  `db:"opens_at"`
		ClosesAt time.Time  `db:"closes_at"`
		ClosedAt *time.Time `db:"closed_at"`
	}
	if err := tx.GetContext(ctx, &windowRow, windowQuery, item.MatchID); err != nil {
		if isNotFound(err) {
			return ballot.ErrWindowNotOpen
		}
		return fmt.Errorf("lock voting window for ballot: %w", err)
	}

	window := votingwindow.Window{
		OpensAt:  windowRow.OpensAt,
		ClosesAt: windowRow.ClosesAt,
		ClosedAt: windowRow.ClosedAt,
	}
	if window.StateAt(item.CreatedAt) != votingwindow.StateOpen {
		return ballot.ErrWindowNotOpen
	}

	const insertBallotQuery = `
INSERT INTO ballots (public_id, match_public_id, voter_public_id, created_at)
VALUES (:public_id, :match_public_id, :voter_public_id, :created_at)`

	insertSQL, insertArgs, err := sqlx.Named(insertBallotQuery, map[string]any{
		"public_id":       item.ID,
		"match_public_id": item.MatchID,
		"voter_public_id": item.VoterID,
		"created_at":      item.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("bind insert ballot query: %w", err)
	}
	insertSQL = tx.Rebind(insertSQL)
	if _, err := tx.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
		if isUniqueViolation(err) {
			return ballot.ErrAlreadyCast
		}
		return fmt.Errorf("insert ballot: %w", err)
	}

	const insertPickQuery = `
INSERT INTO ballot_picks (ballot_public_id, player_public_id, points)
VALUES (:ballot_public_id, :player_public_id, :points)`

	for _, pick := range item.Picks {
		pickSQL, pickArgs, err := sqlx.Named(insertPickQuery, map[string]any{
			"ballot_public_id": item.ID,
			"player_public_id": pick.PlayerID,
			"points":           pick.Points,
		})
		if err != nil {
			return fmt.Errorf("bind insert ballot pick player=%s query: %w", pick.PlayerID, err)
		}
		pickSQL = tx.Rebind(pickSQL)
		if _, err := tx.ExecContext(ctx, pickSQL, pickArgs...); err != nil {
			return fmt.Errorf("insert ballot pick player=%s: %w", pick.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ballot insert tx: %w", err)
	}
	return nil
}

func (r *BallotRepository) ListByMatch(ctx context.Context, matchID string) ([]ballot.Ballot, error) {
	query, args, err := qb.Select("*").From("ballots").
		Where(qb.Eq("match_public_id", matchID)).
		OrderBy("created_at", "voter_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select ballots query: %w", err)
	}

	var rows []ballotTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select ballots by match: %w", err)
	}
	if len(rows) == 0 {
		return []ballot.Ballot{}, nil
	}

	ballotIDs := make([]any, 0, len(rows))
	for _, row := range rows {
		ballotIDs = append(ballotIDs, row.PublicID)
	}
	picksQuery, picksArgs, err := qb.Select("*").From("ballot_picks").
		Where(qb.In("ballot_public_id", ballotIDs)).
		OrderBy("ballot_public_id", "points DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select ballot picks query: %w", err)
	}

	var pickRows []ballotPickTableModel
	if err := r.db.SelectContext(ctx, &pickRows, picksQuery, picksArgs...); err != nil {
		return nil, fmt.Errorf("select ballot picks: %w", err)
	}
	picksByBallot := make(map[string][]ballot.Pick, len(rows))
	for _, row := range pickRows {
		picksByBallot[row.BallotID] = append(picksByBallot[row.BallotID], ballot.Pick{
			PlayerID: row.PlayerID,
			Points:   row.Points,
		})
	}

	out := make([]ballot.Ballot, 0, len(rows))
	for _, row := range rows {
		out = append(out, ballot.Ballot{
			ID:        row.PublicID,
			MatchID:   row.MatchID,
			VoterID:   row.VoterID,
			Picks:     picksByBallot[row.PublicID],
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

func (r *BallotRepository) GetByMatchAndVoter(ctx context.Context, matchID, voterID string) (ballot.Ballot, bool, error) {
	query, args, err := qb.Select("*").From("ballots").
		Where(
			qb.Eq("match_public_id", matchID),
			qb.Eq("voter_public_id", voterID),
		).
		ToSQL()
	if err != nil {
		return ballot.Ballot{}, false, fmt.Errorf("build get ballot query: %w", err)
	}

	var row ballotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return ballot.Ballot{}, false, nil
		}
		return ballot.Ballot{}, false, fmt.Errorf("get ballot by match and voter: %w", err)
	}

	picksQuery, picksArgs, err := qb.Select("*").From("ballot_picks").
		Where(qb.Eq("ballot_public_id", row.PublicID)).
		OrderBy("points DESC").
		ToSQL()
	if err != nil {
		return ballot.Ballot{}, false, fmt.Errorf("build get ballot picks query: %w", err)
	}

	var pickRows []ballotPickTableModel
	if err := r.db.SelectContext(ctx, &pickRows, picksQuery, picksArgs...); err != nil {
		return ballot.Ballot{}, false, fmt.Errorf("select picks for ballot: %w", err)
	}

	picks := make([]ballot.Pick, 0, len(pickRows))
	for _, pickRow := range pickRows {
		picks = append(picks, ballot.Pick{PlayerID: pickRow.PlayerID, Points: pickRow.Points})
	}

	return ballot.Ballot{
		ID:        row.PublicID,
		MatchID:   row.MatchID,
		VoterID:   row.VoterID,
		Picks:     picks,
		CreatedAt: row.CreatedAt,
	}, true, nil
}
