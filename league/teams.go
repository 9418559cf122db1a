package league

import (
	"sort"

	"github.com/Dosada05/fifa-tournament/models"
)

// UsedTeams collects every roster entry the player has been assigned across all
// matches. When excludeMatchID is set, that match's assignment for the player
// is ignored so an edit does not block its own current selection.
func UsedTeams(matches []models.Match, player string, excludeMatchID *int) models.TeamSet {
	used := make(models.TeamSet)
	for _, m := range matches {
		if excludeMatchID != nil && m.MatchID == *excludeMatchID {
			continue
		}
		if m.P1 == player {
			if t := m.Team(models.SideHome); t != "" {
				used[t] = struct{}{}
			}
		}
		if m.P2 == player {
			if t := m.Team(models.SideAway); t != "" {
				used[t] = struct{}{}
			}
		}
	}
	return used
}

// SelectableTeams lists the legal choices for one side of one match, sorted
// ascending: the roster minus what the player already used elsewhere, plus the
// side's current selection.
func SelectableTeams(roster []string, matches []models.Match, matchID int, side models.Side) ([]string, error) {
	if !side.Valid() {
		return nil, ErrInvalidSide
	}
	m, ok := findMatch(matches, matchID)
	if !ok {
		return nil, ErrMatchNotFound
	}

	used := UsedTeams(matches, m.Player(side), &matchID)
	seen := make(map[string]struct{}, len(roster)+1)
	options := make([]string, 0, len(roster)+1)
	for _, team := range roster {
		if team == "" || used.Has(team) {
			continue
		}
		if _, dup := seen[team]; dup {
			continue
		}
		seen[team] = struct{}{}
		options = append(options, team)
	}
	if current := m.Team(side); current != "" {
		if _, ok := seen[current]; !ok {
			options = append(options, current)
		}
	}
	sort.Strings(options)
	return options, nil
}

// TeamUsageReport builds the tracker table: one row per player (declared and
// match-only), sorted by name.
func TeamUsageReport(players []string, matches []models.Match) []models.TeamUsage {
	names := Reconcile(players, matches)
	sort.Strings(names)

	report := make([]models.TeamUsage, 0, len(names))
	for _, name := range names {
		used := UsedTeams(matches, name, nil)
		teams := make([]string, 0, len(used))
		for t := range used {
			teams = append(teams, t)
		}
		sort.Strings(teams)
		report = append(report, models.TeamUsage{
			Player:    name,
			UsedCount: len(teams),
			Teams:     teams,
		})
	}
	return report
}

func findMatch(matches []models.Match, matchID int) (models.Match, bool) {
	for _, m := range matches {
		if m.MatchID == matchID {
			return m, true
		}
	}
	return models.Match{}, false
}
