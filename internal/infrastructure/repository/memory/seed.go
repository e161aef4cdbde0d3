package memory

import (
	"time"

	"github.com/matchdayhq/matchday/internal/domain/competition"
	"github.com/matchdayhq/matchday/internal/domain/match"
	"github.com/matchdayhq/matchday/internal/domain/team"
)

const (
	CompetitionIDSundayLeague = "lon-sunday-league-2026"
	CompetitionIDMidweekCup   = "lon-midweek-cup-2026"
)

func SeedCompetitions() []competition.Competition {
	return []competition.Competition{
		{
			ID:               CompetitionIDSundayLeague,
			Name:             "North London Sunday League",
			Type:             competition.TypeLeague,
			VotingEnabled:    true,
			VotingPeriodDays: 5,
			ReminderDays:     1,
		},
		{
			ID:                       CompetitionIDMidweekCup,
			Name:                     "Midweek Knockout Cup",
			Type:                     competition.TypeKnockout,
			VotingEnabled:            true,
			VotingPeriodDays:         5,
			KnockoutVotingPeriodDays: 2,
			ReminderDays:             1,
		},
	}
}

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "tm-redlion", CompetitionID: CompetitionIDSundayLeague, Name: "Red Lion FC", Short: "RLF"},
		{ID: "tm-crown", CompetitionID: CompetitionIDSundayLeague, Name: "Crown & Anchor", Short: "CRA"},
		{ID: "tm-rovers", CompetitionID: CompetitionIDSundayLeague, Name: "Borough Rovers", Short: "BRV"},
		{ID: "tm-wanderers", CompetitionID: CompetitionIDSundayLeague, Name: "Athletic Wanderers", Short: "ATW"},
		{ID: "tm-redlion-cup", CompetitionID: CompetitionIDMidweekCup, Name: "Red Lion FC", Short: "RLF"},
		{ID: "tm-rovers-cup", CompetitionID: CompetitionIDMidweekCup, Name: "Borough Rovers", Short: "BRV"},
	}
}

func SeedMatches() []match.Match {
	return []match.Match{
		{
			ID:            "mt-sun-001",
			CompetitionID: CompetitionIDSundayLeague,
			HomeTeamID:    "tm-redlion",
			AwayTeamID:    "tm-crown",
			HomeScore:     3,
			AwayScore:     1,
			CompletedAt:   time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC),
			Roster: []match.Participant{
				{PlayerID: "pl-harris", TeamID: "tm-redlion", Side: match.SideHome, Goals: 2, Starter: true},
				{PlayerID: "pl-okafor", TeamID: "tm-redlion", Side: match.SideHome, Goals: 1, Assists: 1, Starter: true},
				{PlayerID: "pl-nowak", TeamID: "tm-redlion", Side: match.SideHome, Assists: 2, Starter: true},
				{PlayerID: "pl-doyle", TeamID: "tm-crown", Side: match.SideAway, Goals: 1, Starter: true},
				{PlayerID: "pl-mensah", TeamID: "tm-crown", Side: match.SideAway, Starter: true},
				{PlayerID: "pl-kovacs", TeamID: "tm-crown", Side: match.SideAway, Starter: false},
			},
		},
		{
			ID:            "mt-sun-002",
			CompetitionID: CompetitionIDSundayLeague,
			HomeTeamID:    "tm-rovers",
			AwayTeamID:    "tm-wanderers",
			HomeScore:     0,
			AwayScore:     0,
			CompletedAt:   time.Date(2026, 2, 15, 14, 0, 0, 0, time.UTC),
			Roster: []match.Participant{
				{PlayerID: "pl-fletcher", TeamID: "tm-rovers", Side: match.SideHome, Starter: true},
				{PlayerID: "pl-adeyemi", TeamID: "tm-rovers", Side: match.SideHome, Starter: true},
				{PlayerID: "pl-brennan", TeamID: "tm-wanderers", Side: match.SideAway, Starter: true},
				{PlayerID: "pl-silva", TeamID: "tm-wanderers", Side: match.SideAway, Starter: true},
			},
		},
	}
}
