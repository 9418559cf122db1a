package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/fifa-tournament/models"
)

var ErrNotEnoughPlayers = errors.New("round robin needs at least 2 distinct players")

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() FixtureGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateFixtures builds a round-robin schedule with the circle method: every
// week each player plays at most once, and with an odd player count one player
// sits out per week. With two legs the second half repeats the first with home
// and away swapped.
func (g *RoundRobinGenerator) GenerateFixtures(ctx context.Context, params GenerateFixturesParams) ([]models.Match, error) {
	players := dedupe(params.Players)
	if len(players) < 2 {
		return nil, fmt.Errorf("RoundRobinGenerator: %w (found %d)", ErrNotEnoughPlayers, len(players))
	}

	legs := params.Legs
	if legs != 2 {
		legs = 1 // Default to 1 round
	}
	matchID := 1

	// "" marks the bye slot.
	slots := append([]string{}, players...)
	if len(slots)%2 == 1 {
		slots = append(slots, "")
	}
	n := len(slots)
	weeksPerLeg := n - 1

	firstLeg := make([][][2]string, 0, weeksPerLeg)
	for round := 0; round < weeksPerLeg; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pairs := make([][2]string, 0, n/2)
		for i := 0; i < n/2; i++ {
			home, away := slots[i], slots[n-1-i]
			if home == "" || away == "" {
				continue
			}
			// alternate the fixed player's home games so nobody is always home
			if i == 0 && round%2 == 1 {
				home, away = away, home
			}
			pairs = append(pairs, [2]string{home, away})
		}
		firstLeg = append(firstLeg, pairs)

		// rotate everything except slot 0
		last := slots[n-1]
		copy(slots[2:], slots[1:n-1])
		slots[1] = last
	}

	matches := make([]models.Match, 0, legs*len(players)*(len(players)-1)/2)
	for leg := 0; leg < legs; leg++ {
		for w, pairs := range firstLeg {
			week := leg*weeksPerLeg + w + 1
			for _, p := range pairs {
				home, away := p[0], p[1]
				if leg == 1 {
					home, away = away, home
				}
				matches = append(matches, models.Match{
					Week:    week,
					MatchID: matchID,
					P1:      home,
					P2:      away,
				})
				matchID++
			}
		}
	}
	return matches, nil
}

func dedupe(players []string) []string {
	seen := make(map[string]struct{}, len(players))
	out := make([]string, 0, len(players))
	for _, p := range players {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
