package models

// Snapshot is the complete tournament state and the only unit of persistence.
type Snapshot struct {
	Players []string `json:"players"`
	Matches []Match  `json:"matches"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	c := Snapshot{
		Players: make([]string, len(s.Players)),
		Matches: make([]Match, len(s.Matches)),
	}
	copy(c.Players, s.Players)
	for i, m := range s.Matches {
		c.Matches[i] = m.Clone()
	}
	return c
}

// IsEmpty mirrors the "fresh sheet" check: nothing to show without both lists.
func (s *Snapshot) IsEmpty() bool {
	return s == nil || len(s.Players) == 0 || len(s.Matches) == 0
}
