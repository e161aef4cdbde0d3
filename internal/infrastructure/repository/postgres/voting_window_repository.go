package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/matchdayhq/matchday/internal/domain/votingwindow"
	qb "github.com/matchdayhq/matchday/internal/platform/querybuilder"
)

type VotingWindowRepository struct {
	db *sqlx.DB
}

func NewVotingWindowRepository(db *sqlx.DB) *VotingWindowRepository {
	return &VotingWindowRepository{db: db}
}

func (r *VotingWindowRepository) GetByMatch(ctx context.Context, matchID string) (votingwindow.Window, bool, error) {
	query, args, err := qb.Select("*").From("voting_windows").
		Where(qb.Eq("match_public_id", matchID)).
		ToSQL()
	if err != nil {
		return votingwindow.Window{}, false, fmt.Errorf("build get voting window query: %w", err)
	}

	var row votingWindowTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return votingwindow.Window{}, false, nil
		}
		return votingwindow.Window{}, false, fmt.Errorf("get voting window: %w", err)
	}

	return windowFromRow(row), true, nil
}

func (r *VotingWindowRepository) Create(ctx context.Context, item votingwindow.Window) error {
	const insertQuery = `
INSERT INTO voting_windows (
    match_public_id,
    competition_public_id,
    opens_at,
    closes_at,
    remind_at
) VALUES (:match_public_id, :competition_public_id, :opens_at, :closes_at, :remind_at)
ON CONFLICT (match_public_id) DO NOTHING`

	insertSQL, insertArgs, err := sqlx.Named(insertQuery, map[string]any{
		"match_public_id":       item.MatchID,
		"competition_public_id": item.CompetitionID,
		"opens_at":              item.OpensAt,
		"closes_at":             item.ClosesAt,
		"remind_at":             item.RemindAt,
	})
	if err != nil {
		return fmt.Errorf("bind insert voting window query: %w", err)
	}
	insertSQL = r.db.Rebind(insertSQL)
	if _, err := r.db.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
		return fmt.Errorf("insert voting window: %w", err)
	}
	return nil
}

func (r *VotingWindowRepository) ListCloseDue(ctx context.Context, now time.Time) ([]votingwindow.Window, error) {
	query, args, err := qb.Select("*").From("voting_windows").
		Where(
			qb.IsNull("closed_at"),
			qb.Expr("closes_at <= ?", now),
		).
		OrderBy("closes_at", "match_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list close-due windows query: %w", err)
	}
	return r.selectWindows(ctx, query, args)
}

func (r *VotingWindowRepository) ListReminderDue(ctx context.Context, now time.Time) ([]votingwindow.Window, error) {
	query, args, err := qb.Select("*").From("voting_windows").
		Where(
			qb.IsNull("closed_at"),
			qb.IsNull("reminder_sent_at"),
			qb.Expr("remind_at <= ?", now),
			qb.Expr("closes_at > ?", now),
		).
		OrderBy("remind_at", "match_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list reminder-due windows query: %w", err)
	}
	return r.selectWindows(ctx, query, args)
}

func (r *VotingWindowRepository) ListClosed(ctx context.Context) ([]votingwindow.Window, error) {
	query, args, err := qb.Select("*").From("voting_windows").
		Where(qb.Expr("closed_at IS NOT NULL")).
		OrderBy("closed_at", "match_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list closed windows query: %w", err)
	}
	return r.selectWindows(ctx, query, args)
}

func (r *VotingWindowRepository) MarkClosed(ctx context.Context, matchID string, closedAt time.Time) (bool, error) {
	query, args, err := qb.Update("voting_windows").
		Set("closed_at", closedAt).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("match_public_id", matchID),
			qb.IsNull("closed_at"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build mark window closed query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark window closed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark window closed rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *VotingWindowRepository) MarkReminderSent(ctx context.Context, matchID string, sentAt time.Time) (bool, error) {
	query, args, err := qb.Update("voting_windows").
		Set("reminder_sent_at", sentAt).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("match_public_id", matchID),
			qb.IsNull("reminder_sent_at"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build mark reminder sent query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark reminder sent: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark reminder sent rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *VotingWindowRepository) selectWindows(ctx context.Context, query string, args []any) ([]votingwindow.Window, error) {
	var rows []votingWindowTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select voting windows: %w", err)
	}

	out := make([]votingwindow.Window, 0, len(rows))
	for _, row := range rows {
		out = append(out, windowFromRow(row))
	}
	return out, nil
}

func windowFromRow(row votingWindowTableModel) votingwindow.Window {
	return votingwindow.Window{
		MatchID:        row.MatchID,
		CompetitionID:  row.CompetitionID,
		OpensAt:        row.OpensAt,
		ClosesAt:       row.ClosesAt,
		RemindAt:       row.RemindAt,
		ReminderSentAt: row.ReminderSentAt,
		ClosedAt:       row.ClosedAt,
	}
}
