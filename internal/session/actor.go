package session

import "github.com/ukydev/forklift-safety/internal/models"

// Actor is the explicit caller context for every lifecycle operation. It is
// built from JWT claims at the HTTP layer or constructed as the system actor
// by automated watchers; the service never reads ambient state.
type Actor struct {
	UserID     string
	BusinessID string
	Role       models.Role
}

// System reports whether the actor is the automated system identity.
func (a Actor) System() bool {
	return a.UserID == models.SystemActorID
}

// SystemActor returns the trusted identity used for automated closures
// (inactivity timeouts, geofence exits).
func SystemActor(businessID string) Actor {
	return Actor{
		UserID:     models.SystemActorID,
		BusinessID: businessID,
		Role:       models.RoleAdmin,
	}
}

// FromClaims builds an Actor from validated JWT claims.
func FromClaims(claims *models.Claims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{
		UserID:     claims.UserID,
		BusinessID: claims.BusinessID,
		Role:       claims.Role,
	}
}
