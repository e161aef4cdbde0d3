package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/matchdayhq/matchday/internal/domain/match"
	qb "github.com/matchdayhq/matchday/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) List(ctx context.Context) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.IsNull("deleted_at")).
		OrderBy("completed_at", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches query: %w", err)
	}
	return r.selectMatches(ctx, query, args)
}

func (r *MatchRepository) ListByCompetition(ctx context.Context, competitionID string) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("competition_public_id", competitionID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("completed_at", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches by competition query: %w", err)
	}
	return r.selectMatches(ctx, query, args)
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("public_id", matchID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match by id query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match by id: %w", err)
	}

	rosters, err := r.rostersByMatch(ctx, []string{row.PublicID})
	if err != nil {
		return match.Match{}, false, err
	}

	return matchFromRow(row, rosters[row.PublicID]), true, nil
}

func (r *MatchRepository) Upsert(ctx context.Context, item match.Match) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for match upsert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const upsertMatchQuery = `
INSERT INTO matches (
    public_id,
    competition_public_id,
    home_team_public_id,
    away_team_public_id,
    home_score,
    away_score,
    home_penalties,
    away_penalties,
    completed_at
) VALUES (
    :public_id, :competition_public_id, :home_team_public_id, :away_team_public_id,
    :home_score, :away_score, :home_penalties, :away_penalties, :completed_at
)
ON CONFLICT (public_id)
DO UPDATE SET
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    home_penalties = EXCLUDED.home_penalties,
    away_penalties = EXCLUDED.away_penalties,
    completed_at = EXCLUDED.completed_at,
    deleted_at = NULL`

	upsertSQL, upsertArgs, err := sqlx.Named(upsertMatchQuery, map[string]any{
		"public_id":             item.ID,
		"competition_public_id": item.CompetitionID,
		"home_team_public_id":   item.HomeTeamID,
		"away_team_public_id":   item.AwayTeamID,
		"home_score":            item.HomeScore,
		"away_score":            item.AwayScore,
		"home_penalties":        item.HomePenalties,
		"away_penalties":        item.AwayPenalties,
		"completed_at":          item.CompletedAt,
	})
	if err != nil {
		return fmt.Errorf("bind upsert match query: %w", err)
	}
	upsertSQL = tx.Rebind(upsertSQL)
	if _, err := tx.ExecContext(ctx, upsertSQL, upsertArgs...); err != nil {
		return fmt.Errorf("upsert match: %w", err)
	}

	const clearRosterQuery = `
UPDATE match_participants
SET deleted_at = NOW()
WHERE match_public_id = $1
  AND deleted_at IS NULL`
	if _, err := tx.ExecContext(ctx, clearRosterQuery, item.ID); err != nil {
		return fmt.Errorf("soft delete existing roster: %w", err)
	}

	const upsertParticipantQuery = `
INSERT INTO match_participants (
    match_public_id,
    player_public_id,
    team_public_id,
    side,
    goals,
    assists,
    starter
) VALUES (:match_public_id, :player_public_id, :team_public_id, :side, :goals, :assists, :starter)
ON CONFLICT (match_public_id, player_public_id)
DO UPDATE SET
    team_public_id = EXCLUDED.team_public_id,
    side = EXCLUDED.side,
    goals = EXCLUDED.goals,
    assists = EXCLUDED.assists,
    starter = EXCLUDED.starter,
    deleted_at = NULL`

	for _, participant := range item.Roster {
		participantSQL, participantArgs, err := sqlx.Named(upsertParticipantQuery, map[string]any{
			"match_public_id":  item.ID,
			"player_public_id": participant.PlayerID,
			"team_public_id":   participant.TeamID,
			"side":             participant.Side,
			"goals":            participant.Goals,
			"assists":          participant.Assists,
			"starter":          participant.Starter,
		})
		if err != nil {
			return fmt.Errorf("bind upsert participant player=%s query: %w", participant.PlayerID, err)
		}
		participantSQL = tx.Rebind(participantSQL)
		if _, err := tx.ExecContext(ctx, participantSQL, participantArgs...); err != nil {
			return fmt.Errorf("upsert participant player=%s: %w", participant.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit match upsert tx: %w", err)
	}
	return nil
}

func (r *MatchRepository) selectMatches(ctx context.Context, query string, args []any) ([]match.Match, error) {
	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}
	if len(rows) == 0 {
		return []match.Match{}, nil
	}

	matchIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		matchIDs = append(matchIDs, row.PublicID)
	}
	rosters, err := r.rostersByMatch(ctx, matchIDs)
	if err != nil {
		return nil, err
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row, rosters[row.PublicID]))
	}
	return out, nil
}

func (r *MatchRepository) rostersByMatch(ctx context.Context, matchIDs []string) (map[string][]match.Participant, error) {
	ids := make([]any, 0, len(matchIDs))
	for _, id := range matchIDs {
		ids = append(ids, id)
	}

	query, args, err := qb.Select("*").From("match_participants").
		Where(
			qb.In("match_public_id", ids),
			qb.IsNull("deleted_at"),
		).
		OrderBy("match_public_id", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select rosters query: %w", err)
	}

	var rows []matchParticipantTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select match rosters: %w", err)
	}

	out := make(map[string][]match.Participant, len(matchIDs))
	for _, row := range rows {
		out[row.MatchID] = append(out[row.MatchID], match.Participant{
			PlayerID: row.PlayerID,
			TeamID:   row.TeamID,
			Side:     row.Side,
			Goals:    row.Goals,
			Assists:  row.Assists,
			Starter:  row.Starter,
		})
	}
	return out, nil
}

func matchFromRow(row matchTableModel, roster []match.Participant) match.Match {
	return match.Match{
		ID:            row.PublicID,
		CompetitionID: row.CompetitionID,
		HomeTeamID:    row.HomeTeamID,
		AwayTeamID:    row.AwayTeamID,
		HomeScore:     row.HomeScore,
		AwayScore:     row.AwayScore,
		HomePenalties: row.HomePenalties,
		AwayPenalties: row.AwayPenalties,
		CompletedAt:   row.CompletedAt,
		Roster:        roster,
	}
}
