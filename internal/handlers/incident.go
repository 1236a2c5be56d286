package handlers

import (
	"net/http"
	"time"

	"github.com/ukydev/forklift-safety/internal/db"
	"github.com/ukydev/forklift-safety/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// IncidentHandler handles safety incident reports
type IncidentHandler struct {
	incidentCollection db.IncidentCollection
}

// NewIncidentHandler creates a new incident handler
func NewIncidentHandler(incidentCollection db.IncidentCollection) *IncidentHandler {
	return &IncidentHandler{incidentCollection: incidentCollection}
}

// ReportIncident records a safety incident reported by the caller.
func (h *IncidentHandler) ReportIncident(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	var incident models.Incident
	if !readBody(w, r, &incident) {
		return
	}

	if incident.VehicleID == "" || incident.Description == "" {
		http.Error(w, "Vehicle and description are required", http.StatusBadRequest)
		return
	}

	incident.BusinessID = actor.BusinessID
	incident.ReportedBy = actor.UserID
	if incident.OccurredAt.IsZero() {
		incident.OccurredAt = time.Now()
	}

	created, err := h.incidentCollection.InsertIncident(r.Context(), incident)
	if err != nil {
		http.Error(w, "Failed to record incident", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// ListIncidents returns incident reports for the caller's business.
func (h *IncidentHandler) ListIncidents(w http.ResponseWriter, r *http.Request) {
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

	incidents, err := h.incidentCollection.FindIncidents(r.Context(), filter)
	if err != nil {
		http.Error(w, "Failed to list incidents", http.StatusInternalServerError)
		return
	}
	if incidents == nil {
		incidents = []models.Incident{}
	}

	writeJSON(w, http.StatusOK, incidents)
}
