package services

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/fifa-tournament/brackets"
	"github.com/Dosada05/fifa-tournament/league"
	"github.com/Dosada05/fifa-tournament/models"
	"github.com/Dosada05/fifa-tournament/repositories"
)

// Broadcaster pushes live updates to connected viewers.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type TournamentService interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
	Standings(ctx context.Context) ([]models.PlayerStats, error)
	TeamUsage(ctx context.Context) ([]models.TeamUsage, error)
	PlayerTeamUsage(ctx context.Context, player string) (*models.TeamUsage, error)
	SelectableTeams(ctx context.Context, matchID int, side models.Side) ([]string, error)
	Schedule(ctx context.Context) ([]models.WeekSchedule, error)
	Roster() []string

	RecordResult(ctx context.Context, input models.ResultInput) (*models.Match, error)
	Initialize(ctx context.Context, snapshot *models.Snapshot, force bool) (*models.Snapshot, error)
	GenerateFixtures(ctx context.Context, input GenerateFixturesInput) (*models.Snapshot, error)
}

type GenerateFixturesInput struct {
	Players []string `json:"players"`
	Legs    int      `json:"legs"`
	Force   bool     `json:"force"`
}

type tournamentService struct {
	repo      repositories.SnapshotRepository
	generator brackets.FixtureGenerator
	hub       Broadcaster
	metrics   *Metrics
	roster    []string
	logger    *slog.Logger

	// writeMu serialises read-modify-write cycles inside this process.
	writeMu sync.Mutex

	cacheMu        sync.Mutex
	cacheKey       [sha256.Size]byte
	cacheStandings []models.PlayerStats
}

// NewTournamentService wires the store, the fixture generator and the live
// hub together. hub and metrics may be nil.
func NewTournamentService(
	repo repositories.SnapshotRepository,
	generator brackets.FixtureGenerator,
	hub Broadcaster,
	metrics *Metrics,
	roster []string,
	logger *slog.Logger,
) TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if generator == nil {
		generator = brackets.NewRoundRobinGenerator()
	}
	var r []string
	if roster != nil {
		r = make([]string, len(roster))
		copy(r, roster)
	}
	return &tournamentService{
		repo:      repo,
		generator: generator,
		hub:       hub,
		metrics:   metrics,
		roster:    r,
		logger:    logger,
	}
}

func (s *tournamentService) load(ctx context.Context) (*models.Snapshot, error) {
	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrSnapshotNotFound) {
			s.metrics.SnapshotLoads.WithLabelValues("empty").Inc()
			return nil, ErrSnapshotNotInitialized
		}
		s.metrics.SnapshotLoads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	s.metrics.SnapshotLoads.WithLabelValues("ok").Inc()
	return snapshot, nil
}

func (s *tournamentService) save(ctx context.Context, snapshot *models.Snapshot) error {
	start := time.Now()
	defer func() { s.metrics.SnapshotSaves.Observe(time.Since(start).Seconds()) }()

	if err := s.repo.Save(ctx, snapshot); err != nil {
		if errors.Is(err, repositories.ErrDuplicateMatchID) ||
			errors.Is(err, repositories.ErrDuplicatePlayer) ||
			errors.Is(err, repositories.ErrSnapshotMalformed) {
			return fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *tournamentService) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	return s.load(ctx)
}

// Standings prefers a table the store keeps up to date on every save and falls
// back to folding the snapshot.
func (s *tournamentService) Standings(ctx context.Context) ([]models.PlayerStats, error) {
	if reader, ok := s.repo.(repositories.StandingsReader); ok {
		stored, err := reader.ListStandings(ctx)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "failed to read stored standings, recomputing", slog.Any("error", err))
		case len(stored) > 0:
			s.metrics.StandingsCache.WithLabelValues("stored").Inc()
			return stored, nil
		}
	}

	snapshot, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.standingsFor(ctx, snapshot), nil
}

// standingsFor memoises the last table, keyed by the snapshot's content hash.
func (s *tournamentService) standingsFor(ctx context.Context, snapshot *models.Snapshot) []models.PlayerStats {
	data, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to hash snapshot, computing standings uncached", slog.Any("error", err))
		return league.ComputeStandings(snapshot.Players, snapshot.Matches)
	}
	key := sha256.Sum256(data)

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.cacheStandings != nil && key == s.cacheKey {
		s.metrics.StandingsCache.WithLabelValues("hit").Inc()
		return copyStandings(s.cacheStandings)
	}
	s.metrics.StandingsCache.WithLabelValues("miss").Inc()
	standings := league.ComputeStandings(snapshot.Players, snapshot.Matches)
	s.cacheKey = key
	s.cacheStandings = standings
	return copyStandings(standings)
}

func (s *tournamentService) TeamUsage(ctx context.Context) ([]models.TeamUsage, error) {
	snapshot, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return league.TeamUsageReport(snapshot.Players, snapshot.Matches), nil
}

func (s *tournamentService) PlayerTeamUsage(ctx context.Context, player string) (*models.TeamUsage, error) {
	usage, err := s.TeamUsage(ctx)
	if err != nil {
		return nil, err
	}
	for i := range usage {
		if usage[i].Player == player {
			return &usage[i], nil
		}
	}
	return nil, fmt.Errorf("%w: player %q", ErrNotFound, player)
}

func (s *tournamentService) SelectableTeams(ctx context.Context, matchID int, side models.Side) ([]string, error) {
	snapshot, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	options, err := league.SelectableTeams(s.roster, snapshot.Matches, matchID, side)
	if err != nil {
		return nil, mapLeagueError(err)
	}
	return options, nil
}

func (s *tournamentService) Schedule(ctx context.Context) ([]models.WeekSchedule, error) {
	snapshot, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return league.Weeks(snapshot.Matches), nil
}

func (s *tournamentService) Roster() []string {
	r := make([]string, len(s.roster))
	copy(r, s.roster)
	return r
}

// RecordResult is load, edit, save. Concurrent editors in other processes
// are not coordinated: the last save wins.
func (s *tournamentService) RecordResult(ctx context.Context, input models.ResultInput) (*models.Match, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snapshot, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := league.ApplyResult(*snapshot, s.roster, input)
	if err != nil {
		s.metrics.ResultsRejected.WithLabelValues(rejectReason(err)).Inc()
		s.logger.InfoContext(ctx, "result rejected", slog.Int("match_id", input.MatchID), slog.Any("error", err))
		return nil, mapLeagueError(err)
	}

	if err := s.save(ctx, &updated); err != nil {
		s.logger.ErrorContext(ctx, "failed to save result", slog.Int("match_id", input.MatchID), slog.Any("error", err))
		return nil, err
	}
	s.metrics.ResultsRecorded.Inc()

	var match models.Match
	for _, m := range updated.Matches {
		if m.MatchID == input.MatchID {
			match = m
			break
		}
	}
	s.logger.InfoContext(ctx, "result recorded",
		slog.Int("match_id", match.MatchID),
		slog.String("outcome", string(league.Outcome(match))),
	)

	s.broadcast(brackets.MessageMatchUpdated, match)
	s.broadcast(brackets.MessageStandingsUpdated, s.standingsFor(ctx, &updated))
	return &match, nil
}

// Initialize stores a fresh snapshot. Existing data is only replaced when force is set.
func (s *tournamentService) Initialize(ctx context.Context, snapshot *models.Snapshot, force bool) (*models.Snapshot, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("%w: snapshot is required", ErrValidationFailed)
	}
	prepared := snapshot.Clone()
	prepared.Players = league.Reconcile(prepared.Players, nil)
	if err := s.validateFixtures(&prepared); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !force {
		_, err := s.load(ctx)
		switch {
		case err == nil:
			return nil, ErrAlreadyInitialized
		case !errors.Is(err, ErrSnapshotNotInitialized):
			return nil, err
		}
	}

	if err := s.save(ctx, &prepared); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "tournament initialized",
		slog.Int("players", len(prepared.Players)),
		slog.Int("matches", len(prepared.Matches)),
		slog.Bool("forced", force),
	)
	s.broadcast(brackets.MessageSnapshotReset, prepared)
	return &prepared, nil
}

func (s *tournamentService) GenerateFixtures(ctx context.Context, input GenerateFixturesInput) (*models.Snapshot, error) {
	players := league.Reconcile(input.Players, nil)
	matches, err := s.generator.GenerateFixtures(ctx, brackets.GenerateFixturesParams{
		Players: players,
		Legs:    input.Legs,
	})
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughPlayers) {
			return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		return nil, fmt.Errorf("failed to generate fixtures with %s: %w", s.generator.GetName(), err)
	}
	s.logger.InfoContext(ctx, "fixtures generated",
		slog.String("generator", s.generator.GetName()),
		slog.Int("players", len(players)),
		slog.Int("matches", len(matches)),
	)
	return s.Initialize(ctx, &models.Snapshot{Players: players, Matches: matches}, input.Force)
}

func (s *tournamentService) broadcast(messageType string, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(brackets.DefaultRoom, brackets.WebSocketMessage{
		Type:    messageType,
		Payload: payload,
		RoomID:  brackets.DefaultRoom,
	})
}

func (s *tournamentService) validateFixtures(snapshot *models.Snapshot) error {
	if snapshot.IsEmpty() {
		return fmt.Errorf("%w: players and matches are required", ErrValidationFailed)
	}
	if err := repositories.ValidateSnapshot(snapshot); err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	for _, m := range snapshot.Matches {
		if m.P1 == "" || m.P2 == "" {
			return fmt.Errorf("%w: match %d has no opponent", ErrValidationFailed, m.MatchID)
		}
		if (m.Score1 == nil) != (m.Score2 == nil) {
			return fmt.Errorf("%w: match %d has only one score", ErrValidationFailed, m.MatchID)
		}
		if (m.Score1 != nil && *m.Score1 < 0) || (m.Score2 != nil && *m.Score2 < 0) {
			return fmt.Errorf("%w: match %d has a negative score", ErrValidationFailed, m.MatchID)
		}
	}
	if err := league.ValidateAssignments(snapshot.Matches, s.roster); err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return nil
}

func mapLeagueError(err error) error {
	switch {
	case errors.Is(err, league.ErrMatchNotFound):
		return fmt.Errorf("%w: %w", ErrMatchNotFound, err)
	case errors.Is(err, league.ErrTeamAlreadyUsed), errors.Is(err, league.ErrTeamNotInRoster):
		return fmt.Errorf("%w: %w", ErrTeamUnavailable, err)
	case errors.Is(err, league.ErrInvalidScore), errors.Is(err, league.ErrInvalidSide):
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	default:
		return err
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, league.ErrMatchNotFound):
		return "match_not_found"
	case errors.Is(err, league.ErrInvalidScore):
		return "invalid_score"
	case errors.Is(err, league.ErrTeamNotInRoster):
		return "team_not_in_roster"
	case errors.Is(err, league.ErrTeamAlreadyUsed):
		return "team_already_used"
	default:
		return "other"
	}
}

func copyStandings(rows []models.PlayerStats) []models.PlayerStats {
	out := make([]models.PlayerStats, len(rows))
	copy(out, rows)
	return out
}
