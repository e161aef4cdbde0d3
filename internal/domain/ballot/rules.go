package ballot

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRankingSize = errors.New("ranking must contain exactly three picks")
	ErrDuplicatePlayer    = errors.New("duplicate player in ranking")
	ErrInvalidPoints      = errors.New("ranking points must be exactly 3, 2 and 1")
)

// ValidateRanking checks the fixed point schema: exactly three picks, three
// distinct players, and the point values 3, 2 and 1 each used once.
func ValidateRanking(picks []Pick) error {
	if len(picks) != RankingSize {
		return fmt.Errorf("%w: got %d", ErrInvalidRankingSize, len(picks))
	}

	playerSet := make(map[string]struct{}, RankingSize)
	pointSet := make(map[int]struct{}, RankingSize)
	for _, pick := range picks {
		if pick.PlayerID == "" {
			return fmt.Errorf("%w: empty player id", ErrInvalidRankingSize)
		}
		if _, exists := playerSet[pick.PlayerID]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, pick.PlayerID)
		}
		playerSet[pick.PlayerID] = struct{}{}

		if pick.Points < 1 || pick.Points > 3 {
			return fmt.Errorf("%w: got %d", ErrInvalidPoints, pick.Points)
		}
		if _, exists := pointSet[pick.Points]; exists {
			return fmt.Errorf("%w: %d awarded twice", ErrInvalidPoints, pick.Points)
		}
		pointSet[pick.Points] = struct{}{}
	}

	return nil
}

// Tally sums the points each player received across the given ballots.
func Tally(ballots []Ballot) map[string]int {
	out := make(map[string]int)
	for _, b := range ballots {
		for _, pick := range b.Picks {
			out[pick.PlayerID] += pick.Points
		}
	}
	return out
}
