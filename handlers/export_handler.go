package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dosada05/fifa-tournament/services"
	"github.com/Dosada05/fifa-tournament/storage"
)

type ExportHandler struct {
	tournamentService services.TournamentService
}

func NewExportHandler(ts services.TournamentService) *ExportHandler {
	return &ExportHandler{tournamentService: ts}
}

// StandingsWorkbook отдает таблицу и трекер команд одним xlsx файлом.
func (h *ExportHandler) StandingsWorkbook(w http.ResponseWriter, r *http.Request) {
	standings, err := h.tournamentService.Standings(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	usage, err := h.tournamentService.TeamUsage(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	f, err := storage.StandingsWorkbook(standings, usage)
	if err != nil {
		serverErrorResponse(w, r, fmt.Errorf("failed to build workbook: %w", err))
		return
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		serverErrorResponse(w, r, fmt.Errorf("failed to render workbook: %w", err))
		return
	}

	w.Header().Set("Content-Type", storage.StandingsContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="standings.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
