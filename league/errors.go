package league

import "errors"

var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrInvalidScore    = errors.New("scores must be both set and non-negative, or both empty")
	ErrInvalidSide     = errors.New("side must be home or away")
	ErrTeamNotInRoster = errors.New("team is not in the roster")
	ErrTeamAlreadyUsed = errors.New("team already used by this player in another match")
	ErrSelfMatch       = errors.New("a player cannot be on both sides of a match")
)
