package handlers

import (
	"encoding/json"
	"net/http"

	"cardquest/internal/middleware"
	"cardquest/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// AssignmentHandler handles contact assignment requests
type AssignmentHandler struct {
	assignmentService *services.AssignmentService
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignmentService *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// AssignRequest represents the request body for assigning a card
type AssignRequest struct {
	ContactID   string `json:"contact_id"`
	ContactName string `json:"contact_name"`
	CardID      string `json:"card_id"`
}

// Assign handles POST /api/v1/assignments
func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.ContactID == "" || req.CardID == "" {
		respondError(w, "contact_id and card_id are required", http.StatusBadRequest)
		return
	}

	assignment, err := h.assignmentService.Assign(ctx, userID, req.ContactID, req.ContactName, req.CardID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("contact_id", req.ContactID).
			Str("card_id", req.CardID).
			Msg("Failed to assign card")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	respondJSON(w, assignment, http.StatusCreated)
}

// Unassign handles DELETE /api/v1/assignments/{assignment_id}
func (h *AssignmentHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	assignmentID := chi.URLParam(r, "assignment_id")

	if assignmentID == "" {
		respondError(w, "assignment_id is required", http.StatusBadRequest)
		return
	}

	if err := h.assignmentService.Unassign(ctx, userID, assignmentID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("assignment_id", assignmentID).
			Msg("Failed to remove assignment")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// OwnedCards handles GET /api/v1/assignments/cards
func (h *AssignmentHandler) OwnedCards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	cards, err := h.assignmentService.OwnedCards(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list owned cards")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	respondJSON(w, cards, http.StatusOK)
}
