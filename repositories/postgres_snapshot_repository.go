package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/fifa-tournament/models"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS players (
	position INTEGER NOT NULL,
	name     TEXT    PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS matches (
	match_id    INTEGER PRIMARY KEY,
	week        INTEGER NOT NULL,
	match_group TEXT,
	p1          TEXT    NOT NULL,
	p2          TEXT    NOT NULL,
	score1      INTEGER CHECK (score1 >= 0),
	score2      INTEGER CHECK (score2 >= 0),
	team1       TEXT,
	team2       TEXT
);
CREATE INDEX IF NOT EXISTS idx_matches_week ON matches (week, match_id);
`

type postgresSnapshotRepository struct {
	db        *sql.DB
	standings TournamentStandingRepository
}

// NewPostgresSnapshotRepository stores the snapshot in the players and matches
// tables. When standings is non-nil the derived table is refreshed in the same
// transaction as every save.
func NewPostgresSnapshotRepository(db *sql.DB, standings TournamentStandingRepository) SnapshotRepository {
	return &postgresSnapshotRepository{db: db, standings: standings}
}

func (r *postgresSnapshotRepository) ListStandings(ctx context.Context) ([]models.PlayerStats, error) {
	if r.standings == nil {
		return nil, nil
	}
	return r.standings.List(ctx, nil)
}

// EnsureSchema creates the snapshot tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, snapshotSchema); err != nil {
		return fmt.Errorf("failed to create snapshot schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, standingsSchema); err != nil {
		return fmt.Errorf("failed to create standings schema: %w", err)
	}
	return nil
}

func (r *postgresSnapshotRepository) Load(ctx context.Context) (*models.Snapshot, error) {
	var (
		players []string
		matches []models.Match
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		players, err = r.listPlayers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = r.listMatches(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot := &models.Snapshot{Players: players, Matches: matches}
	if snapshot.IsEmpty() {
		return nil, ErrSnapshotNotFound
	}
	return snapshot, nil
}

func (r *postgresSnapshotRepository) listPlayers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM players ORDER BY position ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresSnapshotRepository) listMatches(ctx context.Context) ([]models.Match, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT match_id, week, match_group, p1, p2, score1, score2, team1, team2
		FROM matches
		ORDER BY week ASC, match_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func scanMatch(rowScanner interface{ Scan(...interface{}) error }) (models.Match, error) {
	var (
		m              models.Match
		group          sql.NullString
		score1, score2 sql.NullInt64
		team1, team2   sql.NullString
	)
	err := rowScanner.Scan(&m.MatchID, &m.Week, &group, &m.P1, &m.P2, &score1, &score2, &team1, &team2)
	if err != nil {
		return models.Match{}, fmt.Errorf("failed to scan match: %w", err)
	}
	m.Group = group.String
	m.Score1 = intFromNull(score1)
	m.Score2 = intFromNull(score2)
	m.Team1 = stringFromNull(team1)
	m.Team2 = stringFromNull(team2)
	return m, nil
}

// Save replaces every player and match row inside one transaction.
func (r *postgresSnapshotRepository) Save(ctx context.Context, snapshot *models.Snapshot) (err error) {
	if err := ValidateSnapshot(snapshot); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM matches`); err != nil {
		return fmt.Errorf("failed to clear matches: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM players`); err != nil {
		return fmt.Errorf("failed to clear players: %w", err)
	}

	if err = r.insertPlayers(ctx, tx, snapshot.Players); err != nil {
		return err
	}
	if err = r.insertMatches(ctx, tx, snapshot.Matches); err != nil {
		return err
	}

	if r.standings != nil {
		if err = r.standings.Replace(ctx, tx, snapshot); err != nil {
			return fmt.Errorf("failed to refresh standings: %w", err)
		}
	}
	return nil
}

func (r *postgresSnapshotRepository) insertPlayers(ctx context.Context, tx *sql.Tx, players []string) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO players (position, name) VALUES ($1, $2)`)
	if err != nil {
		return fmt.Errorf("failed to prepare player insert: %w", err)
	}
	defer stmt.Close()

	for i, name := range players {
		if _, err := stmt.ExecContext(ctx, i, name); err != nil {
			return mapSnapshotPQError(fmt.Errorf("failed to insert player %q: %w", name, err))
		}
	}
	return nil
}

func (r *postgresSnapshotRepository) insertMatches(ctx context.Context, tx *sql.Tx, matches []models.Match) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO matches (match_id, week, match_group, p1, p2, score1, score2, team1, team2)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
	if err != nil {
		return fmt.Errorf("failed to prepare match insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range matches {
		group := m.Group
		_, err := stmt.ExecContext(ctx,
			m.MatchID, m.Week, nullString(&group), m.P1, m.P2,
			nullInt(m.Score1), nullInt(m.Score2), nullString(m.Team1), nullString(m.Team2),
		)
		if err != nil {
			return mapSnapshotPQError(fmt.Errorf("failed to insert match %d: %w", m.MatchID, err))
		}
	}
	return nil
}

func mapSnapshotPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505": // unique_violation
		switch pqErr.Constraint {
		case "matches_pkey":
			return fmt.Errorf("%w: %v", ErrDuplicateMatchID, err)
		case "players_pkey":
			return fmt.Errorf("%w: %v", ErrDuplicatePlayer, err)
		}
	case "23514": // check_violation
		return fmt.Errorf("%w: %v", ErrSnapshotMalformed, err)
	}
	return err
}
