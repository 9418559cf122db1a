package models

// MatchOutcome describes a result from the home side (p1) point of view.
type MatchOutcome string

const (
	OutcomePending MatchOutcome = "pending"
	OutcomeHomeWin MatchOutcome = "home_win"
	OutcomeAwayWin MatchOutcome = "away_win"
	OutcomeDraw    MatchOutcome = "draw"
)

// Side selects one half of a fixture.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

func (s Side) Valid() bool {
	return s == SideHome || s == SideAway
}

// Match is one fixture between two players. Score1/Score2 are nil until the
// match is played; Team1/Team2 are nil until each side picks a roster entry.
type Match struct {
	Week    int     `json:"week"`
	MatchID int     `json:"match_id"`
	Group   string  `json:"group,omitempty"`
	P1      string  `json:"p1"`
	P2      string  `json:"p2"`
	Score1  *int    `json:"score1"`
	Score2  *int    `json:"score2"`
	Team1   *string `json:"team1"`
	Team2   *string `json:"team2"`
}

// Played reports whether both scores are present.
func (m Match) Played() bool {
	return m.Score1 != nil && m.Score2 != nil
}

// Player returns the participant on the given side.
func (m Match) Player(side Side) string {
	if side == SideAway {
		return m.P2
	}
	return m.P1
}

// Team returns the assigned team on the given side, or "" if none.
func (m Match) Team(side Side) string {
	t := m.Team1
	if side == SideAway {
		t = m.Team2
	}
	if t == nil {
		return ""
	}
	return *t
}

// Clone returns a copy that shares no pointers with m.
func (m Match) Clone() Match {
	c := m
	c.Score1 = cloneInt(m.Score1)
	c.Score2 = cloneInt(m.Score2)
	c.Team1 = cloneString(m.Team1)
	c.Team2 = cloneString(m.Team2)
	return c
}

// ResultInput is the single mutation unit: replace one match's score and team fields.
type ResultInput struct {
	MatchID int     `json:"match_id"`
	Score1  *int    `json:"score1"`
	Score2  *int    `json:"score2"`
	Team1   *string `json:"team1"`
	Team2   *string `json:"team2"`
}

// WeekSchedule groups the fixtures of one round.
type WeekSchedule struct {
	Week      int     `json:"week"`
	Completed bool    `json:"completed"`
	Matches   []Match `json:"matches"`
}

func IntPtr(v int) *int {
	return &v
}

func StringPtr(v string) *string {
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
