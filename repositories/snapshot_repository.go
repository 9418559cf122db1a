package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/fifa-tournament/models"
)

var (
	ErrSnapshotNotFound  = errors.New("tournament snapshot not found or empty")
	ErrDuplicateMatchID  = errors.New("duplicate match id in snapshot")
	ErrDuplicatePlayer   = errors.New("duplicate player name in snapshot")
	ErrSnapshotMalformed = errors.New("tournament snapshot is malformed")
)

// SnapshotRepository loads and saves the whole tournament at once. Save
// overwrites whatever is stored; there is no merge.
type SnapshotRepository interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, snapshot *models.Snapshot) error
}

// StandingsReader is implemented by stores that keep a materialised standings
// table next to the snapshot. An empty result means nothing is stored yet.
type StandingsReader interface {
	ListStandings(ctx context.Context) ([]models.PlayerStats, error)
}

// ValidateSnapshot rejects snapshots no backend can store faithfully.
func ValidateSnapshot(snapshot *models.Snapshot) error {
	if snapshot == nil {
		return ErrSnapshotMalformed
	}
	seenPlayers := make(map[string]struct{}, len(snapshot.Players))
	for _, p := range snapshot.Players {
		if _, ok := seenPlayers[p]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicatePlayer, p)
		}
		seenPlayers[p] = struct{}{}
	}
	seenMatches := make(map[int]struct{}, len(snapshot.Matches))
	for _, m := range snapshot.Matches {
		if _, ok := seenMatches[m.MatchID]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateMatchID, m.MatchID)
		}
		seenMatches[m.MatchID] = struct{}{}
	}
	return nil
}
