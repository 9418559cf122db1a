package league

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Dosada05/fifa-tournament/models"
)

// ApplyResult returns a copy of the snapshot with one match's scores and teams
// replaced. The input snapshot is not modified. A nil roster skips the roster
// membership check.
func ApplyResult(snapshot models.Snapshot, roster []string, in models.ResultInput) (models.Snapshot, error) {
	idx := -1
	for i, m := range snapshot.Matches {
		if m.MatchID == in.MatchID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Snapshot{}, fmt.Errorf("%w: %d", ErrMatchNotFound, in.MatchID)
	}
	if err := validateScores(in.Score1, in.Score2); err != nil {
		return models.Snapshot{}, err
	}

	target := snapshot.Matches[idx]
	team1 := normalizeTeam(in.Team1)
	team2 := normalizeTeam(in.Team2)
	if err := checkTeam(snapshot.Matches, roster, target.P1, in.MatchID, team1); err != nil {
		return models.Snapshot{}, err
	}
	if err := checkTeam(snapshot.Matches, roster, target.P2, in.MatchID, team2); err != nil {
		return models.Snapshot{}, err
	}

	next := snapshot.Clone()
	updated := &next.Matches[idx]
	updated.Score1 = copyInt(in.Score1)
	updated.Score2 = copyInt(in.Score2)
	updated.Team1 = team1
	updated.Team2 = team2
	return next, nil
}

// ValidateAssignments checks a whole fixture list the way ApplyResult checks a
// single edit: no player faces themselves, and no player holds the same team in
// two matches. A nil roster skips the roster membership check.
func ValidateAssignments(matches []models.Match, roster []string) error {
	for _, m := range matches {
		if m.P1 != "" && m.P1 == m.P2 {
			return fmt.Errorf("%w: match %d (%s)", ErrSelfMatch, m.MatchID, m.P1)
		}
		if err := checkTeam(matches, roster, m.P1, m.MatchID, normalizeTeam(m.Team1)); err != nil {
			return fmt.Errorf("match %d: %w", m.MatchID, err)
		}
		if err := checkTeam(matches, roster, m.P2, m.MatchID, normalizeTeam(m.Team2)); err != nil {
			return fmt.Errorf("match %d: %w", m.MatchID, err)
		}
	}
	return nil
}

// Outcome classifies a match for display.
func Outcome(m models.Match) models.MatchOutcome {
	if !m.Played() {
		return models.OutcomePending
	}
	switch {
	case *m.Score1 > *m.Score2:
		return models.OutcomeHomeWin
	case *m.Score2 > *m.Score1:
		return models.OutcomeAwayWin
	default:
		return models.OutcomeDraw
	}
}

// Weeks groups the fixtures by week in ascending order. Matches keep their
// snapshot order inside a week.
func Weeks(matches []models.Match) []models.WeekSchedule {
	byWeek := make(map[int][]models.Match)
	for _, m := range matches {
		byWeek[m.Week] = append(byWeek[m.Week], m.Clone())
	}
	weeks := make([]int, 0, len(byWeek))
	for w := range byWeek {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	out := make([]models.WeekSchedule, 0, len(weeks))
	for _, w := range weeks {
		ws := models.WeekSchedule{Week: w, Completed: true, Matches: byWeek[w]}
		for _, m := range ws.Matches {
			if !m.Played() {
				ws.Completed = false
				break
			}
		}
		out = append(out, ws)
	}
	return out
}

func validateScores(s1, s2 *int) error {
	if (s1 == nil) != (s2 == nil) {
		return ErrInvalidScore
	}
	if s1 != nil && (*s1 < 0 || *s2 < 0) {
		return ErrInvalidScore
	}
	return nil
}

func checkTeam(matches []models.Match, roster []string, player string, matchID int, team *string) error {
	if team == nil {
		return nil
	}
	if roster != nil && !contains(roster, *team) {
		return fmt.Errorf("%w: %q", ErrTeamNotInRoster, *team)
	}
	if UsedTeams(matches, player, &matchID).Has(*team) {
		return fmt.Errorf("%w: %s already played with %q", ErrTeamAlreadyUsed, player, *team)
	}
	return nil
}

// normalizeTeam treats blank selections as unassigned.
func normalizeTeam(t *string) *string {
	if t == nil {
		return nil
	}
	v := strings.TrimSpace(*t)
	if v == "" {
		return nil
	}
	return &v
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
