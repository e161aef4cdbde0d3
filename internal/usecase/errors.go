package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	ErrVotingDisabled   = errors.New("voting is disabled for this competition")
	ErrVotingNotStarted = errors.New("voting has not started for this match")
	ErrVotingClosed     = errors.New("voting is closed for this match")
	ErrDuplicateVote    = errors.New("vote already submitted for this match")
	ErrVoterNotEligible = errors.New("voter did not play in this match")
	ErrSelfVote         = errors.New("players cannot vote for themselves")
	ErrOwnTeamPick      = errors.New("picks from the voter's own team are not allowed")

	// ErrAggregateReplayConflict marks a stored aggregate line that disagrees
	// with a replay of the event log. The rebuild overwrites the whole line
	// rather than patching the diverged fields.
	ErrAggregateReplayConflict = errors.New("stored aggregate diverged from event replay")
)
