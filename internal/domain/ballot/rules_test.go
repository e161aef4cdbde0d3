package ballot

import (
	"errors"
	"testing"
)

func TestValidateRanking(t *testing.T) {
	validPicks := []Pick{
		{PlayerID: "p1", Points: 3},
		{PlayerID: "p2", Points: 2},
		{PlayerID: "p3", Points: 1},
	}

	tests := []struct {
		name      string
		mutate    func([]Pick) []Pick
		targetErr error
	}{
		{
			name: "valid ranking",
			mutate: func(picks []Pick) []Pick {
				return picks
			},
			targetErr: nil,
		},
		{
			name: "too few picks",
			mutate: func(picks []Pick) []Pick {
				return picks[:2]
			},
			targetErr: ErrInvalidRankingSize,
		},
		{
			name: "too many picks",
			mutate: func(picks []Pick) []Pick {
				return append(picks, Pick{PlayerID: "p4", Points: 1})
			},
			targetErr: ErrInvalidRankingSize,
		},
		{
			name: "empty player id",
			mutate: func(picks []Pick) []Pick {
				picks[1].PlayerID = ""
				return picks
			},
			targetErr: ErrInvalidRankingSize,
		},
		{
			name: "duplicate player",
			mutate: func(picks []Pick) []Pick {
				picks[1].PlayerID = "p1"
				return picks
			},
			targetErr: ErrDuplicatePlayer,
		},
		{
			name: "points out of range",
			mutate: func(picks []Pick) []Pick {
				picks[0].Points = 5
				return picks
			},
			targetErr: ErrInvalidPoints,
		},
		{
			name: "points repeated",
			mutate: func(picks []Pick) []Pick {
				picks[2].Points = 3
				return picks
			},
			targetErr: ErrInvalidPoints,
		},
		{
			name: "zero points",
			mutate: func(picks []Pick) []Pick {
				picks[2].Points = 0
				return picks
			},
			targetErr: ErrInvalidPoints,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			picks := tt.mutate(append([]Pick(nil), validPicks...))

			err := ValidateRanking(picks)
			if tt.targetErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			if !errors.Is(err, tt.targetErr) {
				t.Fatalf("expected error %v, got %v", tt.targetErr, err)
			}
		})
	}
}

func TestTally(t *testing.T) {
	ballots := []Ballot{
		{
			MatchID: "m1",
			VoterID: "v1",
			Picks:   []Pick{{PlayerID: "p1", Points: 3}, {PlayerID: "p2", Points: 2}, {PlayerID: "p3", Points: 1}},
		},
		{
			MatchID: "m1",
			VoterID: "v2",
			Picks:   []Pick{{PlayerID: "p2", Points: 3}, {PlayerID: "p1", Points: 2}, {PlayerID: "p4", Points: 1}},
		},
	}

	got := Tally(ballots)
	want := map[string]int{"p1": 5, "p2": 5, "p3": 1, "p4": 1}
	if len(got) != len(want) {
		t.Fatalf("expected %d players, got %d", len(want), len(got))
	}
	for playerID, points := range want {
		if got[playerID] != points {
			t.Fatalf("player %s: expected %d points, got %d", playerID, points, got[playerID])
		}
	}
}
