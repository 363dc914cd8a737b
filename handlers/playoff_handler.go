package handlers

import (
	"net/http"

	"github.com/morhendos/tenis-del-parque/services"
)

type PlayoffHandler struct {
	playoffService services.PlayoffService
}

func NewPlayoffHandler(playoffService services.PlayoffService) *PlayoffHandler {
	return &PlayoffHandler{playoffService: playoffService}
}

// InitializeHandler handles POST /leagues/{leagueID}/playoffs (admin only)
func (h *PlayoffHandler) InitializeHandler(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	full, err := h.playoffService.Initialize(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": full}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetBracketHandler handles GET /leagues/{leagueID}/playoffs
func (h *PlayoffHandler) GetBracketHandler(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	full, err := h.playoffService.FullBracket(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": full}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
