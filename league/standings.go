// Package league holds the pure standings and team-usage folds over a
// tournament snapshot. Nothing here performs I/O or mutates its inputs.
package league

import (
	"sort"

	"github.com/Dosada05/fifa-tournament/models"
)

const (
	PointsForWin  = 3
	PointsForDraw = 1
	PointsForLoss = 0
)

// Reconcile returns the declared players followed by every match participant
// not already declared, in first-seen order. Empty names are dropped and
// duplicates collapse. The declared slice itself is left untouched.
func Reconcile(players []string, matches []models.Match) []string {
	seen := make(map[string]struct{}, len(players))
	out := make([]string, 0, len(players))
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, p := range players {
		add(p)
	}
	for _, m := range matches {
		add(m.P1)
		add(m.P2)
	}
	return out
}

// ComputeStandings folds the played matches into one row per player and ranks
// the rows by points, then goal difference, then goals for. Ties after all
// three keys keep the Reconcile order.
func ComputeStandings(players []string, matches []models.Match) []models.PlayerStats {
	names := Reconcile(players, matches)
	rows := make([]models.PlayerStats, len(names))
	index := make(map[string]int, len(names))
	for i, name := range names {
		rows[i] = models.PlayerStats{Player: name}
		index[name] = i
	}

	for _, m := range matches {
		if !m.Played() || m.P1 == "" || m.P2 == "" {
			continue
		}
		s1, s2 := *m.Score1, *m.Score2
		home := &rows[index[m.P1]]
		away := &rows[index[m.P2]]
		addResult(home, s1, s2)
		addResult(away, s2, s1)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Pts != b.Pts {
			return a.Pts > b.Pts
		}
		if a.GD != b.GD {
			return a.GD > b.GD
		}
		return a.GF > b.GF
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func addResult(r *models.PlayerStats, own, opp int) {
	r.GP++
	r.GF += own
	r.GA += opp
	r.GD += own - opp
	switch {
	case own > opp:
		r.W++
		r.Pts += PointsForWin
	case own < opp:
		r.L++
		r.Pts += PointsForLoss
	default:
		r.D++
		r.Pts += PointsForDraw
	}
}
