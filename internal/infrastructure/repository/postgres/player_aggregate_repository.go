package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/matchdayhq/matchday/internal/domain/playeraggregate"
	qb "github.com/matchdayhq/matchday/internal/platform/querybuilder"
)

type PlayerAggregateRepository struct {
	db *sqlx.DB
}

func NewPlayerAggregateRepository(db *sqlx.DB) *PlayerAggregateRepository {
	return &PlayerAggregateRepository{db: db}
}

func (r *PlayerAggregateRepository) Get(ctx context.Context, playerID, competitionID string) (playeraggregate.Aggregate, bool, error) {
	query, args, err := qb.Select("*").From("player_aggregates").
		Where(
			qb.Eq("player_public_id", playerID),
			qb.Eq("competition_public_id", competitionID),
		).
		ToSQL()
	if err != nil {
		return playeraggregate.Aggregate{}, false, fmt.Errorf("build get player aggregate query: %w", err)
	}

	var row playerAggregateTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return playeraggregate.Aggregate{}, false, nil
		}
		return playeraggregate.Aggregate{}, false, fmt.Errorf("get player aggregate: %w", err)
	}

	return aggregateFromRow(row), true, nil
}

func (r *PlayerAggregateRepository) ListByCompetition(ctx context.Context, competitionID string) ([]playeraggregate.Aggregate, error) {
	query, args, err := qb.Select("*").From("player_aggregates").
		Where(qb.Eq("competition_public_id", competitionID)).
		OrderBy("player_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player aggregates query: %w", err)
	}

	var rows []playerAggregateTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select player aggregates: %w", err)
	}

	out := make([]playeraggregate.Aggregate, 0, len(rows))
	for _, row := range rows {
		out = append(out, aggregateFromRow(row))
	}
	return out, nil
}

func (r *PlayerAggregateRepository) ApplyMatchCompletion(ctx context.Context, matchID, competitionID string, deltas []playeraggregate.Delta) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx for match completion fold: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	claimed, err := claimEvent(ctx, tx, eventKindMatchCompletion, matchID)
	if err != nil {
		return false, err
	}
	if !claimed {
		return false, nil
	}

	const upsertQuery = `
INSERT INTO player_aggregates (
    player_public_id,
    competition_public_id,
    total_goals,
    total_assists,
    total_matches,
    current_rating
) VALUES (:player_public_id, :competition_public_id, :total_goals, :total_assists, 1, 0)
ON CONFLICT (player_public_id, competition_public_id)
DO UPDATE SET
    total_goals = player_aggregates.total_goals + EXCLUDED.total_goals,
    total_assists = player_aggregates.total_assists + EXCLUDED.total_assists,
    total_matches = player_aggregates.total_matches + 1,
    updated_at = NOW()`

	for _, delta := range deltas {
		for _, scope := range []string{competitionID, playeraggregate.GlobalScope} {
			upsertSQL, upsertArgs, err := sqlx.Named(upsertQuery, map[string]any{
				"player_public_id":      delta.PlayerID,
				"competition_public_id": scope,
				"total_goals":           delta.Goals,
				"total_assists":         delta.Assists,
			})
			if err != nil {
				return false, fmt.Errorf("bind fold match delta player=%s query: %w", delta.PlayerID, err)
			}
			upsertSQL = tx.Rebind(upsertSQL)
			if _, err := tx.ExecContext(ctx, upsertSQL, upsertArgs...); err != nil {
				return false, fmt.Errorf("fold match delta player=%s: %w", delta.PlayerID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit match completion fold tx: %w", err)
	}
	return true, nil
}

func (r *PlayerAggregateRepository) ApplyWindowRatings(ctx context.Context, matchID, competitionID string, updates []playeraggregate.RatingUpdate) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx for window ratings fold: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	claimed, err := claimEvent(ctx, tx, eventKindWindowRatings, matchID)
	if err != nil {
		return false, err
	}
	if !claimed {
		return false, nil
	}

	const upsertQuery = `
INSERT INTO player_aggregates (
    player_public_id,
    competition_public_id,
    total_goals,
    total_assists,
    total_matches,
    current_rating
) VALUES (:player_public_id, :competition_public_id, 0, 0, 0, :current_rating)
ON CONFLICT (player_public_id, competition_public_id)
DO UPDATE SET
    current_rating = EXCLUDED.current_rating,
    updated_at = NOW()`

	for _, update := range updates {
		for _, scope := range []string{competitionID, playeraggregate.GlobalScope} {
			upsertSQL, upsertArgs, err := sqlx.Named(upsertQuery, map[string]any{
				"player_public_id":      update.PlayerID,
				"competition_public_id": scope,
				"current_rating":        update.Rating,
			})
			if err != nil {
				return false, fmt.Errorf("bind fold rating player=%s query: %w", update.PlayerID, err)
			}
			upsertSQL = tx.Rebind(upsertSQL)
			if _, err := tx.ExecContext(ctx, upsertSQL, upsertArgs...); err != nil {
				return false, fmt.Errorf("fold rating player=%s: %w", update.PlayerID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit window ratings fold tx: %w", err)
	}
	return true, nil
}

func (r *PlayerAggregateRepository) ReplaceAll(ctx context.Context, items []playeraggregate.Aggregate, matchEvents, ratingEvents []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for aggregate replace: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM player_aggregates`); err != nil {
		return fmt.Errorf("clear player aggregates: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM processed_events`); err != nil {
		return fmt.Errorf("clear processed events: %w", err)
	}

	const insertQuery = `
INSERT INTO player_aggregates (
    player_public_id,
    competition_public_id,
    total_goals,
    total_assists,
    total_matches,
    current_rating
) VALUES (:player_public_id, :competition_public_id, :total_goals, :total_assists, :total_matches, :current_rating)`

	for _, item := range items {
		insertSQL, insertArgs, err := sqlx.Named(insertQuery, map[string]any{
			"player_public_id":      item.PlayerID,
			"competition_public_id": item.CompetitionID,
			"total_goals":           item.TotalGoals,
			"total_assists":         item.TotalAssists,
			"total_matches":         item.TotalMatches,
			"current_rating":        item.CurrentRating,
		})
		if err != nil {
			return fmt.Errorf("bind insert aggregate player=%s query: %w", item.PlayerID, err)
		}
		insertSQL = tx.Rebind(insertSQL)
		if _, err := tx.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
			return fmt.Errorf("insert aggregate player=%s: %w", item.PlayerID, err)
		}
	}

	for _, id := range matchEvents {
		if _, err := claimEvent(ctx, tx, eventKindMatchCompletion, id); err != nil {
			return err
		}
	}
	for _, id := range ratingEvents {
		if _, err := claimEvent(ctx, tx, eventKindWindowRatings, id); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit aggregate replace tx: %w", err)
	}
	return nil
}

// claimEvent records that an event was folded. The primary key on
// (kind, ref_id) makes the claim first-writer-wins; a replay gets zero rows.
func claimEvent(ctx context.Context, tx *sqlx.Tx, kind, refID string) (bool, error) {
	const claimQuery = `
INSERT INTO processed_events (kind, ref_id)
VALUES ($1, $2)
ON CONFLICT (kind, ref_id) DO NOTHING`

	res, err := tx.ExecContext(ctx, claimQuery, kind, refID)
	if err != nil {
		return false, fmt.Errorf("claim event %s/%s: %w", kind, refID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim event rows affected: %w", err)
	}
	return affected > 0, nil
}

func aggregateFromRow(row playerAggregateTableModel) playeraggregate.Aggregate {
	return playeraggregate.Aggregate{
		PlayerID:      row.PlayerID,
		CompetitionID: row.CompetitionID,
		TotalGoals:    row.TotalGoals,
		TotalAssists:  row.TotalAssists,
		TotalMatches:  row.TotalMatches,
		CurrentRating: row.CurrentRating,
	}
}
