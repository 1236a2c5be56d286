package handlers

import (
	"net/http"
	"time"

	"github.com/ukydev/forklift-safety/internal/db"
	"github.com/ukydev/forklift-safety/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// CheckHandler handles pre-shift checklist requests
type CheckHandler struct {
	checkCollection db.CheckCollection
}

// NewCheckHandler creates a new check handler
func NewCheckHandler(checkCollection db.CheckCollection) *CheckHandler {
	return &CheckHandler{checkCollection: checkCollection}
}

// SubmitCheck records a completed pre-shift checklist. The outcome is
// derived from the items: every item must pass for the check to be approved.
func (h *CheckHandler) SubmitCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	var req struct {
		VehicleID string             `json:"vehicle_id"`
		Items     []models.CheckItem `json:"items"`
	}
	if !readBody(w, r, &req) {
		return
	}

	if req.VehicleID == "" {
		http.Error(w, "Vehicle is required", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		http.Error(w, "At least one checklist item is required", http.StatusBadRequest)
		return
	}

	check := models.Check{
		BusinessID:  actor.BusinessID,
		VehicleID:   req.VehicleID,
		UserID:      actor.UserID,
		Items:       req.Items,
		CompletedAt: time.Now(),
	}
	check.Status = check.Outcome()

	created, err := h.checkCollection.InsertCheck(r.Context(), check)
	if err != nil {
		http.Error(w, "Failed to record check", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// ListChecks returns the checks for a vehicle, newest first.
func (h *CheckHandler) ListChecks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	filter := bson.M{"business_id": actor.BusinessID}
	if vehicleID := r.URL.Query().Get("vehicle_id"); vehicleID != "" {
		filter["vehicle_id"] = vehicleID
	}

	checks, err := h.checkCollection.FindChecks(r.Context(), filter)
	if err != nil {
		http.Error(w, "Failed to list checks", http.StatusInternalServerError)
		return
	}
	if checks == nil {
		checks = []models.Check{}
	}

	writeJSON(w, http.StatusOK, checks)
}
