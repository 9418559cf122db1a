package brackets

import (
	"context"

	"github.com/Dosada05/fifa-tournament/models"
)

type GenerateFixturesParams struct {
	Players []string
	// Legs is 1 for a single round robin, 2 for home and away.
	Legs int
}

type FixtureGenerator interface {
	GenerateFixtures(ctx context.Context, params GenerateFixturesParams) ([]models.Match, error)

	GetName() string
}
