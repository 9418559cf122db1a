package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultRoster is the club and national-team list used when no roster file
// is configured.
var DefaultRoster = []string{
	// Clubs
	"Manchester City", "Real Madrid", "Bayern Munich", "Liverpool", "Arsenal",
	"Inter Milan", "Bayer Leverkusen", "Paris Saint-Germain", "FC Barcelona",
	"Atletico Madrid", "Juventus", "Borussia Dortmund", "AC Milan", "RB Leipzig",
	"Atalanta", "Benfica", "Sporting CP", "Napoli", "Tottenham Hotspur",
	"Chelsea", "Manchester United", "Newcastle United", "Aston Villa", "Sevilla",
	"AS Roma", "Lazio", "PSV Eindhoven", "Feyenoord", "Galatasaray", "Ajax",
	"FC Porto",

	// National teams
	"Argentina", "France", "England", "Brazil", "Spain", "Portugal",
	"Netherlands", "Belgium", "Italy", "Germany", "Croatia", "Uruguay", "Norway",
}

type rosterFile struct {
	Teams []string `yaml:"teams"`
}

// LoadRoster reads a YAML document of the form
//
//	teams:
//	  - Arsenal
//	  - Ajax
//
// An empty path yields DefaultRoster.
func LoadRoster(path string) ([]string, error) {
	if path == "" {
		return NormalizeRoster(DefaultRoster), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster file %s: %w", path, err)
	}
	defer f.Close()
	return ParseRoster(f)
}

func ParseRoster(r io.Reader) ([]string, error) {
	var doc rosterFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("roster file is empty")
		}
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}
	roster := NormalizeRoster(doc.Teams)
	if len(roster) == 0 {
		return nil, errors.New("roster must list at least one team")
	}
	return roster, nil
}

// NormalizeRoster trims names and drops blanks and duplicates, keeping order.
func NormalizeRoster(teams []string) []string {
	seen := make(map[string]struct{}, len(teams))
	out := make([]string, 0, len(teams))
	for _, t := range teams {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
