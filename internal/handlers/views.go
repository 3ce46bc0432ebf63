package handlers

import (
	"encoding/json"
	"net/http"

	"cardquest/internal/middleware"
	"cardquest/internal/models"
	"cardquest/internal/services"

	"github.com/rs/zerolog/log"
)

// ViewHandler serves the merged read-only projections
type ViewHandler struct {
	views *services.ViewService
}

// NewViewHandler creates a new view handler
func NewViewHandler(views *services.ViewService) *ViewHandler {
	return &ViewHandler{views: views}
}

// GetDeck handles GET /api/v1/deck
func (h *ViewHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	deck, err := h.views.Deck(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to build deck view")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	respondJSON(w, deck, http.StatusOK)
}

// GetMap handles GET /api/v1/map
func (h *ViewHandler) GetMap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	markers, err := h.views.Map(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to build map view")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	respondJSON(w, markers, http.StatusOK)
}

// MergeContactsRequest carries the device-side contact list
type MergeContactsRequest struct {
	Contacts []models.PhoneContact `json:"contacts"`
}

// MergeContacts handles POST /api/v1/contacts/merge
func (h *ViewHandler) MergeContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req MergeContactsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	merged, err := h.views.Contacts(ctx, userID, req.Contacts)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to merge contacts")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	respondJSON(w, merged, http.StatusOK)
}
