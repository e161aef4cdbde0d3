package memory

import (
	"context"
	"sync"

	"github.com/matchdayhq/matchday/internal/domain/team"
)

type TeamRepository struct {
	mu                 sync.RWMutex
	teamsByCompetition map[string][]team.Team
	byID               map[string]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	teamsByCompetition := make(map[string][]team.Team)
	byID := make(map[string]team.Team, len(teams))
	for _, item := range teams {
		teamsByCompetition[item.CompetitionID] = append(teamsByCompetition[item.CompetitionID], item)
		byID[item.ID] = item
	}

	return &TeamRepository{teamsByCompetition: teamsByCompetition, byID: byID}
}

func (r *TeamRepository) ListByCompetition(_ context.Context, competitionID string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.teamsByCompetition[competitionID]
	out := make([]team.Team, 0, len(items))
	out = append(out, items...)
	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byID[teamID]
	if !ok {
		return team.Team{}, false, nil
	}
	return item, true, nil
}
