package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/fifa-tournament/middleware"
	"github.com/Dosada05/fifa-tournament/models"
	"github.com/Dosada05/fifa-tournament/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

func (h *TournamentHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.tournamentService.Standings(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetTeamUsage(w http.ResponseWriter, r *http.Request) {
	usage, err := h.tournamentService.TeamUsage(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": usage}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetPlayerTeamUsage(w http.ResponseWriter, r *http.Request) {
	player := chi.URLParam(r, "player")
	if unescaped, err := url.PathUnescape(player); err == nil {
		player = unescaped
	}
	player = strings.TrimSpace(player)
	if player == "" {
		badRequestResponse(w, r, errors.New("player is required"))
		return
	}
	usage, err := h.tournamentService.PlayerTeamUsage(r.Context(), player)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"usage": usage}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"roster": h.tournamentService.Roster()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.tournamentService.Schedule(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"weeks": weeks}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.tournamentService.Snapshot(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"snapshot": snapshot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetMatchOptions lists the teams one side of a match may still pick.
// ?side=home|away, home by default.
func (h *TournamentHandler) GetMatchOptions(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	side := models.SideHome
	if s := r.URL.Query().Get("side"); s != "" {
		side = models.Side(strings.ToLower(s))
	}
	if !side.Valid() {
		badRequestResponse(w, r, fmt.Errorf("side must be %q or %q", models.SideHome, models.SideAway))
		return
	}

	teams, err := h.tournamentService.SelectableTeams(r.Context(), matchID, side)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	response := jsonResponse{"match_id": matchID, "side": side, "teams": teams}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type updateResultRequest struct {
	Score1 *int    `json:"score1"`
	Score2 *int    `json:"score2"`
	Team1  *string `json:"team1"`
	Team2  *string `json:"team2"`
}

func (h *TournamentHandler) UpdateMatchResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input updateResultRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.tournamentService.RecordResult(r.Context(), models.ResultInput{
		MatchID: matchID,
		Score1:  input.Score1,
		Score2:  input.Score2,
		Team1:   input.Team1,
		Team2:   input.Team2,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "match result updated",
		slog.Int("match_id", matchID),
		slog.String("editor", middleware.GetEditorFromContext(r.Context())),
	)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type initializeRequest struct {
	Players []string       `json:"players"`
	Matches []models.Match `json:"matches"`
	Force   bool           `json:"force"`
}

func (h *TournamentHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	var input initializeRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snapshot, err := h.tournamentService.Initialize(r.Context(), &models.Snapshot{
		Players: input.Players,
		Matches: input.Matches,
	}, input.Force)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"snapshot": snapshot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GenerateFixtures(w http.ResponseWriter, r *http.Request) {
	var input services.GenerateFixturesInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snapshot, err := h.tournamentService.GenerateFixtures(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"snapshot": snapshot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
