package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		minimum  string
		expected bool
	}{
		{"admin administers areas", RoleAdmin, RoleManager, true},
		{"admin moves pallets", RoleAdmin, RoleUser, true},
		{"manager reads audit log", RoleManager, RoleManager, true},
		{"manager moves pallets", RoleManager, RoleUser, true},
		{"manager is not admin", RoleManager, RoleAdmin, false},
		{"user moves pallets", RoleUser, RoleUser, true},
		{"user cannot delete pallets", RoleUser, RoleManager, false},
		{"unknown role", "forklift", RoleUser, false},
		{"unknown minimum", RoleAdmin, "forklift", false},
		{"empty roles", "", "", false},
		{"empty role", "", RoleUser, false},
		{"roles are case-sensitive", "Admin", RoleUser, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoleAtLeast(tt.role, tt.minimum)
			if got != tt.expected {
				t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
			}
		})
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleManager, RoleUser} {
		if !ValidRole(role) {
			t.Errorf("expected %q to be valid", role)
		}
	}
	for _, role := range []string{"", "operator", "ADMIN"} {
		if ValidRole(role) {
			t.Errorf("expected %q to be invalid", role)
		}
	}
}
