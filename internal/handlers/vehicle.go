package handlers

import (
	"net/http"

	"github.com/ukydev/forklift-safety/internal/db"
	"github.com/ukydev/forklift-safety/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// VehicleHandler handles fleet vehicle requests
type VehicleHandler struct {
	vehicleCollection db.VehicleCollection
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(vehicleCollection db.VehicleCollection) *VehicleHandler {
	return &VehicleHandler{vehicleCollection: vehicleCollection}
}

// CreateVehicle registers a new vehicle in the caller's fleet.
func (h *VehicleHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	var vehicle models.Vehicle
	if !readBody(w, r, &vehicle) {
		return
	}

	if vehicle.SerialNumber == "" {
		http.Error(w, "Serial number is required", http.StatusBadRequest)
		return
	}

	vehicle.BusinessID = actor.BusinessID
	if vehicle.Status == "" {
		vehicle.Status = models.VehicleAvailable
	}
	if !models.IsValidVehicleStatus(vehicle.Status) {
		http.Error(w, "Invalid vehicle status", http.StatusBadRequest)
		return
	}

	created, err := h.vehicleCollection.InsertVehicle(r.Context(), vehicle)
	if err != nil {
		http.Error(w, "Failed to create vehicle", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// ListVehicles returns all vehicles in the caller's fleet.
func (h *VehicleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	vehicles, err := h.vehicleCollection.FindVehicles(r.Context(), bson.M{"business_id": actor.BusinessID})
	if err != nil {
		http.Error(w, "Failed to list vehicles", http.StatusInternalServerError)
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}

	writeJSON(w, http.StatusOK, vehicles)
}

// GetVehicle returns one vehicle by id.
func (h *VehicleHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	vehicleID := r.URL.Query().Get("vehicle_id")
	if vehicleID == "" {
		http.Error(w, "vehicle_id is required", http.StatusBadRequest)
		return
	}

	vehicle, err := h.vehicleCollection.FindVehicle(r.Context(), vehicleID, actor.BusinessID)
	if err != nil {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, vehicle)
}

// SetVehicleStatus updates a vehicle's operational status. Admin-only via
// route middleware; intended for taking vehicles out of service.
func (h *VehicleHandler) SetVehicleStatus(w http.ResponseWriter, r *http.Request) {
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
		VehicleID string `json:"vehicle_id"`
		Status    string `json:"status"`
	}
	if !readBody(w, r, &req) {
		return
	}

	status := models.VehicleStatus(req.Status)
	if !models.IsValidVehicleStatus(status) {
		http.Error(w, "Invalid vehicle status", http.StatusBadRequest)
		return
	}

	if err := h.vehicleCollection.UpdateVehicleStatus(r.Context(), req.VehicleID, actor.BusinessID, status); err != nil {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Vehicle status updated"})
}
