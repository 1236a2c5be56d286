package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus is the lifecycle state of an operating session.
type SessionStatus string

const (
	SessionOperating    SessionStatus = "OPERATING"
	SessionNotOperating SessionStatus = "NOT_OPERATING"
)

// CloseMethod records how a session was ended.
type CloseMethod string

const (
	CloseByUser     CloseMethod = "USER_CLOSED"
	CloseByAdmin    CloseMethod = "ADMIN_CLOSED"
	CloseByTimeout  CloseMethod = "TIMEOUT_CLOSED"
	CloseByGeofence CloseMethod = "GEOFENCE_CLOSED"
)

// SystemActorID is written to closed_by for automated closures.
const SystemActorID = "SYSTEM"

// The wire encoding of each enum is pinned by these tables rather than by
// whatever String() happens to produce, so renaming a constant cannot
// silently change stored documents.
var sessionStatusWire = map[SessionStatus]string{
	SessionOperating:    "OPERATING",
	SessionNotOperating: "NOT_OPERATING",
}

var closeMethodWire = map[CloseMethod]string{
	CloseByUser:     "USER_CLOSED",
	CloseByAdmin:    "ADMIN_CLOSED",
	CloseByTimeout:  "TIMEOUT_CLOSED",
	CloseByGeofence: "GEOFENCE_CLOSED",
}

// IsValidSessionStatus checks if a session status is a known wire value.
func IsValidSessionStatus(s SessionStatus) bool {
	_, ok := sessionStatusWire[s]
	return ok
}

// IsValidCloseMethod checks if a close method is a known wire value.
func IsValidCloseMethod(m CloseMethod) bool {
	_, ok := closeMethodWire[m]
	return ok
}

// ParseCloseMethod converts a wire string into a CloseMethod.
func ParseCloseMethod(s string) (CloseMethod, bool) {
	m := CloseMethod(s)
	return m, IsValidCloseMethod(m)
}

// Session represents one operator's continuous occupancy of one vehicle.
// For a given vehicle at most one session is OPERATING at any time; the
// session service is responsible for holding that invariant.
type Session struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BusinessID    string             `bson:"business_id" json:"business_id"`
	VehicleID     string             `bson:"vehicle_id" json:"vehicle_id"`
	CheckID       string             `bson:"check_id" json:"check_id"`
	UserID        string             `bson:"user_id" json:"user_id"`
	Status        SessionStatus      `bson:"status" json:"status"`
	StartTime     time.Time          `bson:"start_time" json:"start_time"`
	EndTime       *time.Time         `bson:"end_time,omitempty" json:"end_time,omitempty"`
	CloseMethod   CloseMethod        `bson:"close_method,omitempty" json:"close_method,omitempty"`
	ClosedBy      string             `bson:"closed_by,omitempty" json:"closed_by,omitempty"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	StartLocation *Location          `bson:"start_location,omitempty" json:"start_location,omitempty"`
	EndLocation   *Location          `bson:"end_location,omitempty" json:"end_location,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// Open reports whether the session is currently operating.
func (s *Session) Open() bool {
	return s.Status == SessionOperating
}

// StartSessionRequest is the payload for starting a session.
type StartSessionRequest struct {
	VehicleID string    `json:"vehicle_id"`
	CheckID   string    `json:"check_id"`
	Location  *Location `json:"location,omitempty"`
}

// EndSessionRequest is the payload for ending a session.
type EndSessionRequest struct {
	SessionID   string    `json:"session_id"`
	CloseMethod string    `json:"close_method"`
	AdminID     string    `json:"admin_id,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Location    *Location `json:"location,omitempty"`
}
