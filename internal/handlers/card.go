package handlers

import (
	"net/http"

	"cardquest/internal/middleware"
	"cardquest/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// CardHandler handles shared card link resolution and quest acceptance
type CardHandler struct {
	linkService *services.LinkService
}

// NewCardHandler creates a new card handler
func NewCardHandler(linkService *services.LinkService) *CardHandler {
	return &CardHandler{linkService: linkService}
}

// ResolveLink handles GET /api/v1/cards/{found_card_id}
func (h *CardHandler) ResolveLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := middleware.GetUserID(ctx)
	foundCardID := chi.URLParam(r, "found_card_id")

	if foundCardID == "" {
		respondError(w, "found_card_id is required", http.StatusBadRequest)
		return
	}

	resolution, err := h.linkService.ResolveLink(ctx, foundCardID, viewerID)
	if err != nil {
		log.Error().
			Err(err).
			Str("viewer_id", viewerID).
			Str("found_card_id", foundCardID).
			Msg("Failed to resolve link")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	respondJSON(w, resolution, http.StatusOK)
}

// AcceptQuest handles POST /api/v1/cards/{found_card_id}/quest
func (h *CardHandler) AcceptQuest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := middleware.GetUserID(ctx)
	foundCardID := chi.URLParam(r, "found_card_id")

	if foundCardID == "" {
		respondError(w, "found_card_id is required", http.StatusBadRequest)
		return
	}

	quest, err := h.linkService.AcceptQuest(ctx, foundCardID, viewerID)
	if err != nil {
		log.Error().
			Err(err).
			Str("viewer_id", viewerID).
			Str("found_card_id", foundCardID).
			Msg("Failed to accept quest")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	respondJSON(w, quest, http.StatusCreated)
}

// ShareURLResponse carries the external URL for sharing a found card
type ShareURLResponse struct {
	URL string `json:"url"`
}

// ShareURL handles GET /api/v1/cards/{found_card_id}/share
func (h *CardHandler) ShareURL(w http.ResponseWriter, r *http.Request) {
	foundCardID := chi.URLParam(r, "found_card_id")
	if foundCardID == "" {
		respondError(w, "found_card_id is required", http.StatusBadRequest)
		return
	}

	respondJSON(w, ShareURLResponse{URL: h.linkService.ShareURL(foundCardID)}, http.StatusOK)
}
