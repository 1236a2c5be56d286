// Package session implements the vehicle-session lifecycle: starting and
// ending operating sessions while keeping the vehicle's status consistent
// with the presence of an open session. The two writes involved (vehicle
// status, session record) are not atomic; a failure between them is handled
// with a best-effort compensating status write.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/forklift-safety/internal/db"
	"github.com/ukydev/forklift-safety/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Service orchestrates the session, vehicle, check and telemetry collections.
// It is stateless; every call reads and writes through the stores directly.
type Service struct {
	sessions  db.SessionCollection
	vehicles  db.VehicleCollection
	checks    db.CheckCollection
	telemetry db.TelemetryCollection
	log       *logrus.Entry
}

// NewService creates a session lifecycle service. The telemetry collection
// is optional; without it start/end locations are only recorded when the
// caller supplies them.
func NewService(sessions db.SessionCollection, vehicles db.VehicleCollection, checks db.CheckCollection, telemetry db.TelemetryCollection) *Service {
	return &Service{
		sessions:  sessions,
		vehicles:  vehicles,
		checks:    checks,
		telemetry: telemetry,
		log:       logrus.WithField("component", "session"),
	}
}

// EndOptions carries the optional inputs of End.
type EndOptions struct {
	AdminID  string
	Notes    string
	Location *models.Location
}

// Start opens an operating session on a vehicle for the acting operator.
//
// Preconditions are validated in order and abort with no side effects:
// caller context, vehicle availability, check approval, no other open
// session for the caller. The vehicle is then claimed (AVAILABLE -> IN_USE,
// conditional write) before the session record is created; if the create
// fails, the claim is reverted best-effort and a StoreError is returned.
func (s *Service) Start(ctx context.Context, actor Actor, vehicleID, checkID string, loc *models.Location) (*models.Session, error) {
	if actor.UserID == "" || actor.BusinessID == "" {
		return nil, ErrNoUserContext
	}

	vehicle, err := s.vehicles.FindVehicle(ctx, vehicleID, actor.BusinessID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("vehicle lookup: %w", err)
	}
	if !vehicle.Status.Usable() {
		return nil, &VehicleUnavailableError{Status: vehicle.Status}
	}

	check, err := s.checks.FindCheckByID(ctx, checkID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrCheckNotFound
		}
		return nil, fmt.Errorf("check lookup: %w", err)
	}
	// A check submitted for one vehicle cannot authorize another.
	if check.VehicleID != vehicleID {
		return nil, ErrCheckNotFound
	}
	if check.Status != models.CheckApproved {
		return nil, &CheckNotApprovedError{Status: check.Status}
	}

	if current := s.Current(ctx, actor); current != nil {
		return nil, ErrSessionAlreadyActive
	}

	// First side effect. The conditional write closes the window between the
	// availability read above and the claim: a lost race surfaces here as
	// ErrVehicleClaimed instead of a double IN_USE.
	if err := s.vehicles.ClaimVehicle(ctx, vehicleID, actor.BusinessID); err != nil {
		if errors.Is(err, db.ErrVehicleClaimed) {
			return nil, &VehicleUnavailableError{Status: models.VehicleInUse}
		}
		return nil, &StoreError{Op: "claim vehicle", Err: err}
	}

	if loc == nil {
		loc = s.lastKnownLocation(ctx, vehicleID)
	}

	now := time.Now()
	created, err := s.sessions.InsertSession(ctx, models.Session{
		BusinessID:    actor.BusinessID,
		VehicleID:     vehicleID,
		CheckID:       checkID,
		UserID:        actor.UserID,
		Status:        models.SessionOperating,
		StartTime:     now,
		StartLocation: loc,
	})
	if err != nil {
		s.compensate(ctx, vehicleID, actor.BusinessID, models.VehicleAvailable)
		return nil, &StoreError{Op: "create session", Err: err}
	}

	s.log.WithFields(logrus.Fields{
		"session_id": created.ID.Hex(),
		"vehicle_id": vehicleID,
		"user_id":    actor.UserID,
	}).Info("session started")
	return created, nil
}

// End closes an operating session. Authorization depends on the close
// method: ADMIN_CLOSED requires the admin role, USER_CLOSED requires the
// session owner, TIMEOUT_CLOSED and GEOFENCE_CLOSED require the system
// actor. The vehicle is released (status AVAILABLE) before the session
// record is updated; if the update fails the release is reverted
// best-effort and a StoreError is returned.
func (s *Service) End(ctx context.Context, actor Actor, sessionID string, method models.CloseMethod, opts EndOptions) (*models.Session, error) {
	sess, err := s.sessions.FindSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("session lookup: %w", err)
	}

	if actor.UserID == "" {
		return nil, ErrNoUserContext
	}

	var closedBy string
	switch method {
	case models.CloseByAdmin:
		if actor.Role != models.RoleAdmin {
			return nil, &UnauthorizedError{Reason: "only administrators can perform administrative session closure"}
		}
		closedBy = actor.UserID
		if opts.AdminID != "" {
			closedBy = opts.AdminID
		}
	case models.CloseByUser:
		if actor.UserID != sess.UserID {
			return nil, &UnauthorizedError{Reason: "only the session owner can close this session"}
		}
		closedBy = actor.UserID
	case models.CloseByTimeout, models.CloseByGeofence:
		if !actor.System() {
			return nil, &UnauthorizedError{Reason: "automated closure requires the system actor"}
		}
		closedBy = models.SystemActorID
	default:
		return nil, fmt.Errorf("unknown close method %q", method)
	}

	if !sess.Open() {
		return nil, ErrSessionClosed
	}

	// First side effect.
	if err := s.vehicles.UpdateVehicleStatus(ctx, sess.VehicleID, sess.BusinessID, models.VehicleAvailable); err != nil {
		return nil, &StoreError{Op: "release vehicle", Err: err}
	}

	loc := opts.Location
	if loc == nil {
		loc = s.lastKnownLocation(ctx, sess.VehicleID)
	}

	now := time.Now()
	closed := *sess
	closed.Status = models.SessionNotOperating
	closed.EndTime = &now
	closed.CloseMethod = method
	closed.ClosedBy = closedBy
	closed.Notes = opts.Notes
	closed.EndLocation = loc

	updated, err := s.sessions.UpdateSession(ctx, sessionID, closed)
	if err != nil {
		s.compensate(ctx, sess.VehicleID, sess.BusinessID, models.VehicleInUse)
		return nil, &StoreError{Op: "close session", Err: err}
	}

	s.log.WithFields(logrus.Fields{
		"session_id":   sessionID,
		"vehicle_id":   sess.VehicleID,
		"close_method": method,
		"closed_by":    closedBy,
	}).Info("session ended")
	return updated, nil
}

// compensate reverts the vehicle-status write after a failed session write.
// Best-effort: if the revert itself fails the inconsistency is logged but
// not surfaced distinctly to the caller.
func (s *Service) compensate(ctx context.Context, vehicleID, businessID string, status models.VehicleStatus) {
	if err := s.vehicles.UpdateVehicleStatus(ctx, vehicleID, businessID, status); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"vehicle_id": vehicleID,
			"status":     status,
		}).Error("compensating status write failed, vehicle status is inconsistent")
	}
}

// Current returns the caller's open session, or nil. Store failures degrade
// to nil rather than propagating.
func (s *Service) Current(ctx context.Context, actor Actor) *models.Session {
	if actor.UserID == "" || actor.BusinessID == "" {
		return nil
	}
	sessions := s.find(ctx, "current session", bson.M{
		"business_id": actor.BusinessID,
		"user_id":     actor.UserID,
		"status":      models.SessionOperating,
	})
	if len(sessions) == 0 {
		return nil
	}
	return &sessions[0]
}

// ActiveForVehicle returns the open session for a vehicle, or nil.
func (s *Service) ActiveForVehicle(ctx context.Context, vehicleID, businessID string) *models.Session {
	sessions := s.find(ctx, "active session for vehicle", bson.M{
		"business_id": businessID,
		"vehicle_id":  vehicleID,
		"status":      models.SessionOperating,
	})
	if len(sessions) == 0 {
		return nil
	}
	return &sessions[0]
}

// LastCompletedForVehicle returns the most recently closed session for a
// vehicle, or nil.
func (s *Service) LastCompletedForVehicle(ctx context.Context, vehicleID string) *models.Session {
	sessions := s.find(ctx, "last completed session", bson.M{
		"vehicle_id": vehicleID,
		"status":     models.SessionNotOperating,
		"end_time":   bson.M{"$ne": nil},
	})

	var last *models.Session
	for i := range sessions {
		sess := &sessions[i]
		if sess.EndTime == nil {
			continue
		}
		if last == nil || sess.EndTime.After(*last.EndTime) {
			last = sess
		}
	}
	return last
}

// ByUser returns all sessions for a user, newest first.
func (s *Service) ByUser(ctx context.Context, userID string) []models.Session {
	return s.find(ctx, "sessions by user", bson.M{"user_id": userID})
}

// History returns the caller's own sessions, newest first.
func (s *Service) History(ctx context.Context, actor Actor) []models.Session {
	if actor.UserID == "" {
		return nil
	}
	return s.ByUser(ctx, actor.UserID)
}

// All returns every session for a business, newest first.
func (s *Service) All(ctx context.Context, businessID string) []models.Session {
	return s.find(ctx, "all sessions", bson.M{"business_id": businessID})
}

// find is the shared degrade-to-empty read path: any store failure is
// logged and reported as no results.
func (s *Service) find(ctx context.Context, op string, filter bson.M) []models.Session {
	sessions, err := s.sessions.FindSessions(ctx, filter)
	if err != nil {
		s.log.WithError(err).WithField("op", op).Warn("session query failed, returning empty result")
		return nil
	}
	return sessions
}

func (s *Service) lastKnownLocation(ctx context.Context, vehicleID string) *models.Location {
	if s.telemetry == nil {
		return nil
	}
	telemetry, err := s.telemetry.LastForVehicle(ctx, vehicleID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			s.log.WithError(err).WithField("vehicle_id", vehicleID).Warn("last known location lookup failed")
		}
		return nil
	}
	loc := telemetry.Location
	return &loc
}
