package handlers

import (
	"net/http"

	"github.com/morhendos/tenis-del-parque/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
}

func NewStandingsHandler(standingsService services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standingsService: standingsService}
}

// GetHandler handles GET /leagues/{leagueID}/standings. The optional
// status_tier query flag groups active registrations above inactive ones.
func (h *StandingsHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	includeStatusTier := r.URL.Query().Get("status_tier") == "true"

	table, err := h.standingsService.Table(r.Context(), leagueID, includeStatusTier)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": table}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
