package storage

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Dosada05/fifa-tournament/models"
	"github.com/Dosada05/fifa-tournament/repositories"
)

// DecodeSnapshot reads the tournament_data.json document shape.
func DecodeSnapshot(r io.Reader) (*models.Snapshot, error) {
	var snapshot models.Snapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", repositories.ErrSnapshotMalformed, err)
	}
	normalizeSnapshot(&snapshot)
	return &snapshot, nil
}

func EncodeSnapshot(w io.Writer, snapshot *models.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot)
}

// normalizeSnapshot replaces nil slices and blank team cells so every backend
// round-trips to the same value.
func normalizeSnapshot(s *models.Snapshot) {
	if s.Players == nil {
		s.Players = []string{}
	}
	if s.Matches == nil {
		s.Matches = []models.Match{}
	}
	for i := range s.Matches {
		m := &s.Matches[i]
		if m.Team1 != nil && *m.Team1 == "" {
			m.Team1 = nil
		}
		if m.Team2 != nil && *m.Team2 == "" {
			m.Team2 = nil
		}
	}
}
