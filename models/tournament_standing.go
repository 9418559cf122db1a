package models

// PlayerStats is one row of the standings table.
type PlayerStats struct {
	Rank   int    `json:"rank"`
	Player string `json:"player"`
	GP     int    `json:"gp"`
	W      int    `json:"w"`
	D      int    `json:"d"`
	L      int    `json:"l"`
	GF     int    `json:"gf"`
	GA     int    `json:"ga"`
	GD     int    `json:"gd"`
	Pts    int    `json:"pts"`
}

// TeamSet is the set of roster entries a player has already used.
type TeamSet map[string]struct{}

func (s TeamSet) Has(team string) bool {
	_, ok := s[team]
	return ok
}

// TeamUsage is one row of the team tracker report.
type TeamUsage struct {
	Player    string   `json:"player"`
	UsedCount int      `json:"used_count"`
	Teams     []string `json:"teams"`
}
