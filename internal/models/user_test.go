package models

import "testing"

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"supervisor role", RoleSupervisor, true},
		{"operator role", RoleOperator, true},
		{"viewer role", RoleViewer, true},
		{"invalid role", "invalid", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestUser_HasPermission(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	supervisor := &User{Role: RoleSupervisor}
	operator := &User{Role: RoleOperator}
	viewer := &User{Role: RoleViewer}

	tests := []struct {
		name     string
		user     *User
		action   string
		expected bool
	}{
		// Admin permissions - should have all permissions
		{"admin can delete user", admin, "delete_user", true},
		{"admin can manage users", admin, "manage_users", true},
		{"admin can start session", admin, "start_session", true},

		// Supervisor permissions - everything except user management
		{"supervisor cannot delete user", supervisor, "delete_user", false},
		{"supervisor cannot manage users", supervisor, "manage_users", false},
		{"supervisor can start session", supervisor, "start_session", true},
		{"supervisor can submit check", supervisor, "submit_check", true},

		// Operator permissions - limited to operational tasks
		{"operator can view vehicles", operator, "view_vehicles", true},
		{"operator can submit check", operator, "submit_check", true},
		{"operator can start session", operator, "start_session", true},
		{"operator can end session", operator, "end_session", true},
		{"operator can report incident", operator, "report_incident", true},
		{"operator cannot delete user", operator, "delete_user", false},
		{"operator cannot view sessions", operator, "view_sessions", false},

		// Viewer permissions - read-only access
		{"viewer can view vehicles", viewer, "view_vehicles", true},
		{"viewer can view sessions", viewer, "view_sessions", true},
		{"viewer can view checks", viewer, "view_checks", true},
		{"viewer can view incidents", viewer, "view_incidents", true},
		{"viewer cannot start session", viewer, "start_session", false},
		{"viewer cannot submit check", viewer, "submit_check", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.user.HasPermission(tt.action)
			if result != tt.expected {
				t.Errorf("HasPermission(%s) for %s = %v, want %v", tt.action, tt.user.Role, result, tt.expected)
			}
		})
	}
}
