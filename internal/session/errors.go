package session

import (
	"errors"
	"fmt"

	"github.com/ukydev/forklift-safety/internal/models"
)

// Precondition failures. All of these are raised before any write, so the
// caller can retry after fixing the input.
var (
	ErrNoUserContext        = errors.New("no authenticated user context")
	ErrVehicleNotFound      = errors.New("vehicle not found")
	ErrCheckNotFound        = errors.New("pre-shift check not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyActive = errors.New("an operating session already exists for this user")
	ErrSessionClosed        = errors.New("session is already closed")
)

// VehicleUnavailableError is returned when a vehicle cannot be claimed for
// a new session.
type VehicleUnavailableError struct {
	Status models.VehicleStatus
}

func (e *VehicleUnavailableError) Error() string {
	switch e.Status {
	case models.VehicleInUse:
		return "vehicle is already in use by another operator"
	case models.VehicleOutOfService:
		return "vehicle is out of service"
	case models.VehicleBlocked:
		return "vehicle is blocked pending inspection"
	default:
		return "vehicle is not available"
	}
}

// CheckNotApprovedError is returned when the referenced pre-shift check did
// not pass.
type CheckNotApprovedError struct {
	Status models.CheckStatus
}

func (e *CheckNotApprovedError) Error() string {
	return fmt.Sprintf("pre-shift check is not approved (status %s)", e.Status)
}

// UnauthorizedError is returned when the caller may not perform the
// requested closure.
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	return e.Reason
}

// StoreError is returned when a write to one of the backing stores failed
// after validation passed. When Op is "create session" or "close session"
// a compensating vehicle-status write has already been attempted.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
