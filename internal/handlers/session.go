package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ukydev/forklift-safety/internal/middleware"
	"github.com/ukydev/forklift-safety/internal/models"
	"github.com/ukydev/forklift-safety/internal/session"
)

// Lifecycle is the part of the session service the HTTP layer uses.
type Lifecycle interface {
	Start(ctx context.Context, actor session.Actor, vehicleID, checkID string, loc *models.Location) (*models.Session, error)
	End(ctx context.Context, actor session.Actor, sessionID string, method models.CloseMethod, opts session.EndOptions) (*models.Session, error)
	Current(ctx context.Context, actor session.Actor) *models.Session
	ActiveForVehicle(ctx context.Context, vehicleID, businessID string) *models.Session
	LastCompletedForVehicle(ctx context.Context, vehicleID string) *models.Session
	ByUser(ctx context.Context, userID string) []models.Session
	History(ctx context.Context, actor session.Actor) []models.Session
	All(ctx context.Context, businessID string) []models.Session
}

// SessionHandler handles session lifecycle requests
type SessionHandler struct {
	service Lifecycle
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(service Lifecycle) *SessionHandler {
	return &SessionHandler{service: service}
}

func actorFromRequest(r *http.Request) (session.Actor, bool) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return session.Actor{}, false
	}
	return session.FromClaims(claims), true
}

// statusForError maps lifecycle errors onto HTTP status codes.
func statusForError(err error) int {
	var (
		unauthorized *session.UnauthorizedError
		unavailable  *session.VehicleUnavailableError
		notApproved  *session.CheckNotApprovedError
		storeErr     *session.StoreError
	)
	switch {
	case errors.Is(err, session.ErrNoUserContext):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrVehicleNotFound),
		errors.Is(err, session.ErrCheckNotFound),
		errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionAlreadyActive),
		errors.Is(err, session.ErrSessionClosed):
		return http.StatusConflict
	case errors.As(err, &unauthorized):
		return http.StatusForbidden
	case errors.As(err, &unavailable), errors.As(err, &notApproved):
		return http.StatusConflict
	case errors.As(err, &storeErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// StartSession opens an operating session for the caller.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	var req models.StartSessionRequest
	if !readBody(w, r, &req) {
		return
	}

	if req.VehicleID == "" || req.CheckID == "" {
		http.Error(w, "Vehicle and check are required", http.StatusBadRequest)
		return
	}

	created, err := h.service.Start(r.Context(), actor, req.VehicleID, req.CheckID, req.Location)
	if err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// EndSession closes a session. Only USER_CLOSED and ADMIN_CLOSED are
// accepted over HTTP; automated close methods belong to the event watcher.
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	var req models.EndSessionRequest
	if !readBody(w, r, &req) {
		return
	}

	if req.SessionID == "" {
		http.Error(w, "Session is required", http.StatusBadRequest)
		return
	}

	method, valid := models.ParseCloseMethod(req.CloseMethod)
	if !valid || (method != models.CloseByUser && method != models.CloseByAdmin) {
		http.Error(w, "Invalid close method", http.StatusBadRequest)
		return
	}

	closed, err := h.service.End(r.Context(), actor, req.SessionID, method, session.EndOptions{
		AdminID:  req.AdminID,
		Notes:    req.Notes,
		Location: req.Location,
	})
	if err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	writeJSON(w, http.StatusOK, closed)
}

// CurrentSession returns the caller's open session, or 204 if none.
func (h *SessionHandler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	current := h.service.Current(r.Context(), actor)
	if current == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, current)
}

// SessionHistory returns the caller's past and present sessions.
func (h *SessionHandler) SessionHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	sessions := h.service.History(r.Context(), actor)
	if sessions == nil {
		sessions = []models.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// SessionsByUser returns all sessions for a given user.
func (h *SessionHandler) SessionsByUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, ok := actorFromRequest(r); !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	sessions := h.service.ByUser(r.Context(), userID)
	if sessions == nil {
		sessions = []models.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// ListSessions returns every session for the caller's business.
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	sessions := h.service.All(r.Context(), actor.BusinessID)
	if sessions == nil {
		sessions = []models.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// ActiveSessionForVehicle returns the open session on a vehicle, or 204.
func (h *SessionHandler) ActiveSessionForVehicle(w http.ResponseWriter, r *http.Request) {
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

	businessID := r.URL.Query().Get("business_id")
	if businessID == "" {
		businessID = actor.BusinessID
	}

	active := h.service.ActiveForVehicle(r.Context(), vehicleID, businessID)
	if active == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, active)
}

// LastSessionForVehicle returns the most recently completed session on a
// vehicle, or 204.
func (h *SessionHandler) LastSessionForVehicle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, ok := actorFromRequest(r); !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	vehicleID := r.URL.Query().Get("vehicle_id")
	if vehicleID == "" {
		http.Error(w, "vehicle_id is required", http.StatusBadRequest)
		return
	}

	last := h.service.LastCompletedForVehicle(r.Context(), vehicleID)
	if last == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, last)
}
