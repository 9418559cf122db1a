package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dosada05/fifa-tournament/brackets"
	"github.com/Dosada05/fifa-tournament/league"
	"github.com/Dosada05/fifa-tournament/models"
	"github.com/Dosada05/fifa-tournament/repositories"
)

var testRoster = []string{"AC Milan", "Ajax", "Arsenal", "Benfica", "Chelsea"}

type memoryRepo struct {
	mu       sync.Mutex
	snapshot *models.Snapshot
	loads    int
	saves    int
	saveErr  error
}

func (r *memoryRepo) Load(ctx context.Context) (*models.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	if r.snapshot == nil {
		return nil, repositories.ErrSnapshotNotFound
	}
	c := r.snapshot.Clone()
	return &c, nil
}

func (r *memoryRepo) Save(ctx context.Context, snapshot *models.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if err := repositories.ValidateSnapshot(snapshot); err != nil {
		return err
	}
	r.saves++
	c := snapshot.Clone()
	r.snapshot = &c
	return nil
}

type recordingHub struct {
	mu       sync.Mutex
	messages []brackets.WebSocketMessage
}

func (h *recordingHub) BroadcastToRoom(roomID string, message interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if msg, ok := message.(brackets.WebSocketMessage); ok {
		h.messages = append(h.messages, msg)
	}
}

func (h *recordingHub) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.messages))
	for _, m := range h.messages {
		out = append(out, m.Type)
	}
	return out
}

func seededSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Players: []string{"A", "B", "C"},
		Matches: []models.Match{
			{Week: 1, MatchID: 1, P1: "A", P2: "B",
				Score1: models.IntPtr(2), Score2: models.IntPtr(1),
				Team1: models.StringPtr("Arsenal"), Team2: models.StringPtr("Ajax")},
			{Week: 1, MatchID: 2, P1: "C", P2: "A"},
			{Week: 2, MatchID: 3, P1: "B", P2: "C"},
		},
	}
}

func newTestService(repo *memoryRepo) (TournamentService, *recordingHub, *Metrics) {
	hub := &recordingHub{}
	metrics := NewMetrics(prometheus.NewRegistry())
	return NewTournamentService(repo, nil, hub, metrics, testRoster, nil), hub, metrics
}

func TestTournamentService_NotInitialized(t *testing.T) {
	svc, _, metrics := newTestService(&memoryRepo{})
	ctx := context.Background()

	_, err := svc.Standings(ctx)
	assert.ErrorIs(t, err, ErrSnapshotNotInitialized)
	_, err = svc.RecordResult(ctx, models.ResultInput{MatchID: 1})
	assert.ErrorIs(t, err, ErrSnapshotNotInitialized)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.SnapshotLoads.WithLabelValues("empty")))
}

func TestTournamentService_Standings(t *testing.T) {
	svc, _, metrics := newTestService(&memoryRepo{snapshot: seededSnapshot()})
	ctx := context.Background()

	standings, err := svc.Standings(ctx)
	require.NoError(t, err)
	require.Len(t, standings, 3)
	assert.Equal(t, "A", standings[0].Player)
	assert.Equal(t, 3, standings[0].Pts)
	assert.Equal(t, "B", standings[2].Player)

	// same snapshot, served from cache; caller edits do not leak into it
	standings[0].Pts = 99
	again, err := svc.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, again[0].Pts)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StandingsCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StandingsCache.WithLabelValues("miss")))
}

// tableRepo is a memoryRepo that also keeps a materialised standings table.
type tableRepo struct {
	*memoryRepo
	table   []models.PlayerStats
	listErr error
}

func (r *tableRepo) ListStandings(ctx context.Context) ([]models.PlayerStats, error) {
	return r.table, r.listErr
}

func TestTournamentService_StandingsFromStoredTable(t *testing.T) {
	ctx := context.Background()
	stored := []models.PlayerStats{{Rank: 1, Player: "A", GP: 1, W: 1, GF: 2, GA: 1, GD: 1, Pts: 3}}

	repo := &tableRepo{memoryRepo: &memoryRepo{snapshot: seededSnapshot()}, table: stored}
	metrics := NewMetrics(prometheus.NewRegistry())
	svc := NewTournamentService(repo, nil, nil, metrics, testRoster, nil)

	standings, err := svc.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, stored, standings)
	assert.Zero(t, repo.loads)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StandingsCache.WithLabelValues("stored")))

	// empty table or a failing read falls back to the fold
	repo.table = nil
	standings, err = svc.Standings(ctx)
	require.NoError(t, err)
	assert.Len(t, standings, 3)

	repo.listErr = errors.New("relation does not exist")
	standings, err = svc.Standings(ctx)
	require.NoError(t, err)
	assert.Len(t, standings, 3)
	assert.Equal(t, 2, repo.loads)
}

func TestTournamentService_RecordResult(t *testing.T) {
	repo := &memoryRepo{snapshot: seededSnapshot()}
	svc, hub, metrics := newTestService(repo)
	ctx := context.Background()

	match, err := svc.RecordResult(ctx, models.ResultInput{
		MatchID: 2,
		Score1:  models.IntPtr(0),
		Score2:  models.IntPtr(3),
		Team1:   models.StringPtr("Chelsea"),
		Team2:   models.StringPtr("Benfica"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, match.MatchID)
	assert.Equal(t, "Benfica", *match.Team2)

	assert.Equal(t, 1, repo.saves)
	assert.Equal(t, 3, *repo.snapshot.Matches[1].Score2)
	assert.Equal(t, []string{brackets.MessageMatchUpdated, brackets.MessageStandingsUpdated}, hub.types())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ResultsRecorded))

	standings, err := svc.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", standings[0].Player)
	assert.Equal(t, 6, standings[0].Pts)
}

func TestTournamentService_RecordResultErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   models.ResultInput
		wantErr error
		reason  string
	}{
		{"unknown match", models.ResultInput{MatchID: 42}, ErrMatchNotFound, "match_not_found"},
		{"one score", models.ResultInput{MatchID: 2, Score1: models.IntPtr(1)}, ErrValidationFailed, "invalid_score"},
		{"negative score", models.ResultInput{MatchID: 2, Score1: models.IntPtr(-1), Score2: models.IntPtr(0)}, ErrValidationFailed, "invalid_score"},
		{"team reused", models.ResultInput{MatchID: 2, Team2: models.StringPtr("Arsenal")}, ErrTeamUnavailable, "team_already_used"},
		{"team not in roster", models.ResultInput{MatchID: 2, Team1: models.StringPtr("Real Madrid")}, ErrTeamUnavailable, "team_not_in_roster"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memoryRepo{snapshot: seededSnapshot()}
			svc, hub, metrics := newTestService(repo)

			_, err := svc.RecordResult(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, repo.saves)
			assert.Empty(t, hub.types())
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ResultsRejected.WithLabelValues(tt.reason)))
		})
	}
}

func TestTournamentService_RecordResultSaveFailure(t *testing.T) {
	repo := &memoryRepo{snapshot: seededSnapshot(), saveErr: errors.New("disk full")}
	svc, hub, _ := newTestService(repo)

	_, err := svc.RecordResult(context.Background(), models.ResultInput{MatchID: 3, Score1: models.IntPtr(1), Score2: models.IntPtr(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, hub.types())
}

func TestTournamentService_SelectableTeams(t *testing.T) {
	svc, _, _ := newTestService(&memoryRepo{snapshot: seededSnapshot()})
	ctx := context.Background()

	// A used Arsenal in match 1, so it is gone from match 2's away options.
	options, err := svc.SelectableTeams(ctx, 2, models.SideAway)
	require.NoError(t, err)
	assert.Equal(t, []string{"AC Milan", "Ajax", "Benfica", "Chelsea"}, options)

	// editing match 1 keeps its own team selectable
	options, err = svc.SelectableTeams(ctx, 1, models.SideHome)
	require.NoError(t, err)
	assert.Contains(t, options, "Arsenal")

	_, err = svc.SelectableTeams(ctx, 9, models.SideHome)
	assert.ErrorIs(t, err, ErrMatchNotFound)
	_, err = svc.SelectableTeams(ctx, 1, models.Side("left"))
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestTournamentService_TeamUsageAndSchedule(t *testing.T) {
	svc, _, _ := newTestService(&memoryRepo{snapshot: seededSnapshot()})
	ctx := context.Background()

	usage, err := svc.TeamUsage(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 3)
	assert.Equal(t, models.TeamUsage{Player: "A", UsedCount: 1, Teams: []string{"Arsenal"}}, usage[0])

	one, err := svc.PlayerTeamUsage(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ajax"}, one.Teams)
	_, err = svc.PlayerTeamUsage(ctx, "Z")
	assert.ErrorIs(t, err, ErrNotFound)

	weeks, err := svc.Schedule(ctx)
	require.NoError(t, err)
	require.Len(t, weeks, 2)
	assert.False(t, weeks[0].Completed)
	assert.Len(t, weeks[0].Matches, 2)
}

func TestTournamentService_Initialize(t *testing.T) {
	repo := &memoryRepo{}
	svc, hub, _ := newTestService(repo)
	ctx := context.Background()

	snap := seededSnapshot()
	snap.Players = append(snap.Players, "A")
	got, err := svc.Initialize(ctx, snap, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, got.Players)
	assert.Equal(t, []string{brackets.MessageSnapshotReset}, hub.types())

	_, err = svc.Initialize(ctx, seededSnapshot(), false)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	_, err = svc.Initialize(ctx, seededSnapshot(), true)
	assert.NoError(t, err)
	assert.Equal(t, 2, repo.saves)
}

func TestTournamentService_InitializeValidation(t *testing.T) {
	svc, _, _ := newTestService(&memoryRepo{})
	ctx := context.Background()

	_, err := svc.Initialize(ctx, &models.Snapshot{}, false)
	assert.ErrorIs(t, err, ErrValidationFailed)

	dup := seededSnapshot()
	dup.Matches[2].MatchID = 1
	_, err = svc.Initialize(ctx, dup, false)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.ErrorIs(t, err, repositories.ErrDuplicateMatchID)

	half := seededSnapshot()
	half.Matches[1].Score1 = models.IntPtr(1)
	_, err = svc.Initialize(ctx, half, false)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestTournamentService_InitializeRejectsBrokenAssignments(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(snap *models.Snapshot)
		wantErr error
	}{
		{
			name: "player reuses a team",
			edit: func(snap *models.Snapshot) {
				snap.Matches[1].Team2 = models.StringPtr("Arsenal")
			},
			wantErr: league.ErrTeamAlreadyUsed,
		},
		{
			name: "team outside the roster",
			edit: func(snap *models.Snapshot) {
				snap.Matches[1].Team1 = models.StringPtr("Juventus")
			},
			wantErr: league.ErrTeamNotInRoster,
		},
		{
			name: "player against themselves",
			edit: func(snap *models.Snapshot) {
				snap.Matches[2].P2 = "B"
			},
			wantErr: league.ErrSelfMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memoryRepo{}
			svc, _, _ := newTestService(repo)
			snap := seededSnapshot()
			tt.edit(snap)

			_, err := svc.Initialize(context.Background(), snap, false)
			assert.ErrorIs(t, err, ErrValidationFailed)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, repo.snapshot)
			assert.Zero(t, repo.saves)
		})
	}
}

func TestTournamentService_InitializeWithoutRosterSkipsMembership(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewTournamentService(repo, nil, nil, nil, nil, nil)
	snap := seededSnapshot()
	snap.Matches[1].Team1 = models.StringPtr("Juventus")

	_, err := svc.Initialize(context.Background(), snap, false)
	require.NoError(t, err)

	snap = seededSnapshot()
	snap.Matches[1].Team2 = models.StringPtr("Arsenal")
	_, err = svc.Initialize(context.Background(), snap, true)
	assert.ErrorIs(t, err, league.ErrTeamAlreadyUsed)
}

func TestTournamentService_GenerateFixtures(t *testing.T) {
	repo := &memoryRepo{}
	svc, _, _ := newTestService(repo)
	ctx := context.Background()

	snap, err := svc.GenerateFixtures(ctx, GenerateFixturesInput{Players: []string{"A", "B", "C", "D"}})
	require.NoError(t, err)
	assert.Len(t, snap.Matches, 6)
	assert.Equal(t, []string{"A", "B", "C", "D"}, repo.snapshot.Players)

	_, err = svc.GenerateFixtures(ctx, GenerateFixturesInput{Players: []string{"A", "B"}})
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	_, err = svc.GenerateFixtures(ctx, GenerateFixturesInput{Players: []string{"A"}, Force: true})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestTournamentService_RecordResultSerialised(t *testing.T) {
	repo := &memoryRepo{snapshot: seededSnapshot()}
	svc, _, _ := newTestService(repo)

	var wg sync.WaitGroup
	for _, id := range []int{2, 3} {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, err := svc.RecordResult(context.Background(), models.ResultInput{MatchID: id, Score1: models.IntPtr(1), Score2: models.IntPtr(0)})
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	// both edits survive because the service serialises its own writes
	assert.True(t, repo.snapshot.Matches[1].Played())
	assert.True(t, repo.snapshot.Matches[2].Played())
}

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewAuthService(string(hash))

	assert.NoError(t, svc.Login(context.Background(), LoginInput{Password: "letmein"}))
	assert.ErrorIs(t, svc.Login(context.Background(), LoginInput{Password: "wrong"}), ErrAuthInvalidCredentials)
	assert.ErrorIs(t, svc.Login(context.Background(), LoginInput{}), ErrAuthInvalidCredentials)
}
