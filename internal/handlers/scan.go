package handlers

import (
	"encoding/json"
	"net/http"

	"cardquest/internal/middleware"
	"cardquest/internal/models"
	"cardquest/internal/services"

	"github.com/rs/zerolog/log"
)

// ScanHandler handles scan resolution requests
type ScanHandler struct {
	discovery *services.DiscoveryService
}

// NewScanHandler creates a new scan handler
func NewScanHandler(discovery *services.DiscoveryService) *ScanHandler {
	return &ScanHandler{discovery: discovery}
}

// ScanRequest represents a scanned code with the device position. The code
// payload is the catalog card id; the symbology is already filtered by the
// scanning client.
type ScanRequest struct {
	Code     string           `json:"code"`
	Position *models.Location `json:"position"`
}

// ScanResponse wraps the scan outcome with a message to render
type ScanResponse struct {
	*services.ScanOutcome
	Message string `json:"message"`
}

// ResolveScan handles POST /api/v1/scans
func (h *ScanHandler) ResolveScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Code == "" {
		respondError(w, "code is required", http.StatusBadRequest)
		return
	}

	outcome, err := h.discovery.ResolveScan(ctx, req.Code, userID, req.Position)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("code", req.Code).
			Msg("Failed to resolve scan")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	respondJSON(w, ScanResponse{ScanOutcome: outcome, Message: scanMessage(outcome)}, http.StatusOK)
}

func scanMessage(outcome *services.ScanOutcome) string {
	switch outcome.Result {
	case services.ScanAlreadyOwned:
		return "You already have this card in your deck."
	case services.ScanQuestCompleted:
		return "Quest completed! The card has been unlocked."
	default:
		return "Card found! It has been added to your deck."
	}
}
