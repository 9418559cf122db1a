package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dosada05/fifa-tournament/brackets"
	"github.com/Dosada05/fifa-tournament/handlers"
	"github.com/Dosada05/fifa-tournament/models"
	"github.com/Dosada05/fifa-tournament/services"
	"github.com/Dosada05/fifa-tournament/storage"
)

const (
	testSecret   = "routes-test-secret"
	testPassword = "letmein"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	store := storage.NewFileSnapshotStore(filepath.Join(t.TempDir(), "tournament_data.json"))
	hub := brackets.NewHub(nil)
	roster := []string{"Ajax", "Arsenal", "Benfica", "Chelsea"}
	tournamentService := services.NewTournamentService(store, nil, hub, services.NewMetrics(reg), roster, nil)

	router := chi.NewRouter()
	SetupRoutes(router,
		Options{JWTSecret: testSecret, Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})},
		handlers.NewAuthHandler(services.NewAuthService(string(hash)), testSecret),
		handlers.NewTournamentHandler(tournamentService),
		handlers.NewExportHandler(tournamentService),
		handlers.NewWebSocketHandler(hub, nil),
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func login(t *testing.T, base string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, base+"/api/auth/login", "", map[string]string{"password": testPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, ok := body["token"].(string)
	require.True(t, ok)
	return token
}

func TestAPI_TournamentFlow(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL

	resp, _ := doJSON(t, http.MethodGet, base+"/api/standings", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, base+"/api/auth/login", "", map[string]string{"password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	fixtures := map[string]interface{}{"players": []string{"Liron Levran", "Itai Eldar", "Amit Azoulay", "Sean Cohen"}}
	resp, _ = doJSON(t, http.MethodPost, base+"/api/admin/fixtures", "", fixtures)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := login(t, base)
	resp, body := doJSON(t, http.MethodPost, base+"/api/admin/fixtures", token, fixtures)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	snapshot := body["snapshot"].(map[string]interface{})
	assert.Len(t, snapshot["matches"], 6)

	resp, _ = doJSON(t, http.MethodPost, base+"/api/admin/fixtures", token, fixtures)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	result := map[string]interface{}{"score1": 3, "score2": 1, "team1": "Arsenal", "team2": "Ajax"}
	resp, _ = doJSON(t, http.MethodPut, base+"/api/matches/1", "", result)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPut, base+"/api/matches/1", token, result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	match := body["match"].(map[string]interface{})
	assert.Equal(t, 3.0, match["score1"])

	resp, body = doJSON(t, http.MethodGet, base+"/api/standings", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	standings := body["standings"].([]interface{})
	require.Len(t, standings, 4)
	leader := standings[0].(map[string]interface{})
	assert.Equal(t, 3.0, leader["pts"])
	assert.Equal(t, 1.0, leader["rank"])

	resp, _ = doJSON(t, http.MethodPut, base+"/api/matches/99", token, result)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPut, base+"/api/matches/1", token, map[string]interface{}{"score1": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPut, base+"/api/matches/1", token, map[string]interface{}{"goals": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_TeamsAndOptions(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL
	token := login(t, base)

	initial := models.Snapshot{
		Players: []string{"Liron Levran", "Itai Eldar"},
		Matches: []models.Match{
			{Week: 1, MatchID: 1, P1: "Liron Levran", P2: "Itai Eldar",
				Score1: models.IntPtr(1), Score2: models.IntPtr(1),
				Team1: models.StringPtr("Arsenal"), Team2: models.StringPtr("Ajax")},
			{Week: 2, MatchID: 2, P1: "Itai Eldar", P2: "Liron Levran"},
		},
	}
	resp, _ := doJSON(t, http.MethodPost, base+"/api/admin/initialize", token, initial)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, base+"/api/matches/2/options?side=away", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []interface{}{"Ajax", "Benfica", "Chelsea"}, body["teams"])

	resp, _ = doJSON(t, http.MethodGet, base+"/api/matches/2/options?side=left", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodGet, base+"/api/matches/abc/options", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Liron already played Arsenal
	resp, _ = doJSON(t, http.MethodPut, base+"/api/matches/2", token, map[string]interface{}{"team2": "Arsenal"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, base+"/api/teams/usage/Liron%20Levran", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	usage := body["usage"].(map[string]interface{})
	assert.Equal(t, []interface{}{"Arsenal"}, usage["teams"])

	resp, _ = doJSON(t, http.MethodGet, base+"/api/teams/usage/Nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, base+"/api/schedule", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	weeks := body["weeks"].([]interface{})
	require.Len(t, weeks, 2)
	assert.Equal(t, true, weeks[0].(map[string]interface{})["completed"])
}

func TestAPI_StaticEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/openapi.json")
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	resp.Body.Close()
	assert.Equal(t, "3.0.3", doc["openapi"])

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/roster", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["roster"], 4)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_ExportWorkbook(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv.URL)
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/admin/fixtures", token,
		map[string]interface{}{"players": []string{"A", "B", "C"}, "legs": 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err := http.Get(srv.URL + "/api/export/standings.xlsx")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, storage.StandingsContentType, resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	// xlsx is a zip archive
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}
