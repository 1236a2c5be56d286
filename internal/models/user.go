package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user roles in the system
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleOperator   Role = "operator"
	RoleViewer     Role = "viewer"
)

// User represents a user in the system
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BusinessID    string             `bson:"business_id" json:"business_id"`
	Username      string             `bson:"username" json:"username"`
	Email         string             `bson:"email" json:"email"`
	PasswordHash  string             `bson:"password_hash" json:"-"`
	Role          Role               `bson:"role" json:"role"`
	FirstName     string             `bson:"first_name" json:"first_name"`
	LastName      string             `bson:"last_name" json:"last_name"`
	Certification string             `bson:"certification,omitempty" json:"certification,omitempty"`
	IsActive      bool               `bson:"is_active" json:"is_active"`
	LastLogin     *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	BusinessID string `json:"business_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Role       Role   `json:"role"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	UserID       string `json:"user_id"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Claims represents JWT claims
type Claims struct {
	UserID     string `json:"user_id"`
	BusinessID string `json:"business_id"`
	Username   string `json:"username"`
	Role       Role   `json:"role"`
	Exp        int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleSupervisor, RoleOperator, RoleViewer:
		return true
	default:
		return false
	}
}

// HasPermission checks if a user has permission for a specific action
func (u *User) HasPermission(action string) bool {
	switch u.Role {
	case RoleAdmin:
		return true
	case RoleSupervisor:
		return action != "delete_user" && action != "manage_users"
	case RoleOperator:
		return action == "view_vehicles" || action == "submit_check" ||
			action == "start_session" || action == "end_session" ||
			action == "report_incident"
	case RoleViewer:
		return action == "view_vehicles" || action == "view_sessions" ||
			action == "view_checks" || action == "view_incidents"
	default:
		return false
	}
}
