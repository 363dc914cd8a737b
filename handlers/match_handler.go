package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/morhendos/tenis-del-parque/middleware"
	"github.com/morhendos/tenis-del-parque/models"
	"github.com/morhendos/tenis-del-parque/repositories"
	"github.com/morhendos/tenis-del-parque/services"
)

type MatchHandler struct {
	matchService  services.MatchService
	resultService services.ResultService
}

func NewMatchHandler(matchService services.MatchService, resultService services.ResultService) *MatchHandler {
	return &MatchHandler{
		matchService:  matchService,
		resultService: resultService,
	}
}

// GetByIDHandler handles GET /matches/{matchID}
func (h *MatchHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByLeagueHandler handles GET /leagues/{leagueID}/matches
func (h *MatchHandler) ListByLeagueHandler(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var filter repositories.MatchFilter
	query := r.URL.Query()
	if roundStr := query.Get("round"); roundStr != "" {
		round, err := strconv.Atoi(roundStr)
		if err != nil || round <= 0 {
			badRequestResponse(w, r, errors.New("invalid round query parameter"))
			return
		}
		filter.Round = round
	}
	if status := query.Get("status"); status != "" {
		filter.Status = models.MatchStatus(status)
	}
	if matchType := query.Get("type"); matchType != "" {
		filter.Type = models.MatchType(matchType)
	}
	if playerStr := query.Get("player_id"); playerStr != "" {
		playerID, err := strconv.Atoi(playerStr)
		if err != nil || playerID <= 0 {
			badRequestResponse(w, r, errors.New("invalid player_id query parameter"))
			return
		}
		filter.PlayerID = playerID
	}

	matches, err := h.matchService.ListByLeague(r.Context(), leagueID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordResultHandler handles POST /matches/{matchID}/result
func (h *MatchHandler) RecordResultHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.resultService.RecordResult(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReverseResultHandler handles DELETE /matches/{matchID}/result (admin only)
func (h *MatchHandler) ReverseResultHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.resultService.ReverseResult(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateScheduleHandler handles PATCH /matches/{matchID}/schedule
func (h *MatchHandler) UpdateScheduleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	playerID, err := middleware.PlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	if role, roleErr := middleware.PlayerRoleFromContext(r.Context()); roleErr == nil && role == models.RoleAdmin {
		playerID = 0 // admins may edit any match's schedule
	}

	var input services.ScheduleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.UpdateSchedule(r.Context(), id, playerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PostponeHandler handles POST /matches/{matchID}/postpone (admin only)
func (h *MatchHandler) PostponeHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.matchService.Postpone)
}

// CancelHandler handles POST /matches/{matchID}/cancel (admin only)
func (h *MatchHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.matchService.Cancel)
}

// RestoreHandler handles POST /matches/{matchID}/restore (admin only)
func (h *MatchHandler) RestoreHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.matchService.Restore)
}

func (h *MatchHandler) transition(
	w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, matchID int) (*models.Match, error),
) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := op(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
