package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Dosada05/fifa-tournament/league"
	"github.com/Dosada05/fifa-tournament/models"
)

const standingsSchema = `
CREATE TABLE IF NOT EXISTS tournament_standings (
	player           TEXT        PRIMARY KEY,
	rank             INTEGER     NOT NULL,
	games_played     INTEGER     NOT NULL,
	wins             INTEGER     NOT NULL,
	draws            INTEGER     NOT NULL,
	losses           INTEGER     NOT NULL,
	score_for        INTEGER     NOT NULL,
	score_against    INTEGER     NOT NULL,
	score_difference INTEGER     NOT NULL,
	points           INTEGER     NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tournament_standings_ranking
	ON tournament_standings (points DESC, score_difference DESC, score_for DESC);
`

// TournamentStandingRepository keeps a materialised copy of the standings so
// SQL consumers can read the table without re-running the fold.
type TournamentStandingRepository interface {
	Replace(ctx context.Context, exec SQLExecutor, snapshot *models.Snapshot) error
	List(ctx context.Context, exec SQLExecutor) ([]models.PlayerStats, error)
}

type postgresTournamentStandingRepository struct {
	db  *sql.DB // Main DB connection, used if exec is nil
	now func() time.Time
}

func NewPostgresTournamentStandingRepository(db *sql.DB) TournamentStandingRepository {
	return &postgresTournamentStandingRepository{db: db, now: time.Now}
}

func (r *postgresTournamentStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentStandingRepository) Replace(ctx context.Context, exec SQLExecutor, snapshot *models.Snapshot) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM tournament_standings`); err != nil {
		return fmt.Errorf("failed to clear standings: %w", err)
	}

	updatedAt := r.now()
	query := `
		INSERT INTO tournament_standings
		    (player, rank, games_played, wins, draws, losses, score_for, score_against, score_difference, points, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	for _, s := range league.ComputeStandings(snapshot.Players, snapshot.Matches) {
		_, err := executor.ExecContext(ctx, query,
			s.Player, s.Rank, s.GP, s.W, s.D, s.L, s.GF, s.GA, s.GD, s.Pts, updatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert standing for %q: %w", s.Player, err)
		}
	}
	return nil
}

func (r *postgresTournamentStandingRepository) List(ctx context.Context, exec SQLExecutor) ([]models.PlayerStats, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, `
		SELECT player, rank, games_played, wins, draws, losses, score_for, score_against, score_difference, points
		FROM tournament_standings
		ORDER BY rank ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]models.PlayerStats, 0)
	for rows.Next() {
		var s models.PlayerStats
		if err := rows.Scan(&s.Player, &s.Rank, &s.GP, &s.W, &s.D, &s.L, &s.GF, &s.GA, &s.GD, &s.Pts); err != nil {
			return nil, err
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}
