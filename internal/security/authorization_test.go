package security

import (
	"testing"

	"github.com/yourorg/rentease/internal/domain"
)

func TestRolePermissions(t *testing.T) {
	cases := []struct {
		role domain.Role
		perm Permission
		want bool
	}{
		{domain.RoleAdmin, PermManageUsers, true},
		{domain.RoleAdmin, PermDeletePayment, true},
		{domain.RoleOwner, PermCreateLease, true},
		{domain.RoleOwner, PermManageUsers, false},
		{domain.RoleTenant, PermViewOwnLeases, true},
		{domain.RoleTenant, PermCreateLease, false},
		{domain.RoleTenant, PermViewStatistics, false},
		{domain.Role("unknown"), PermViewOwnLeases, false},
	}
	for _, tc := range cases {
		if got := HasPermission(tc.role, tc.perm); got != tc.want {
			t.Errorf("HasPermission(%s, %s) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestRequirePermission(t *testing.T) {
	if err := RequirePermission(domain.RoleAdmin, PermManageUsers, nil); err != nil {
		t.Fatalf("admin should hold every permission: %v", err)
	}
	if err := RequirePermission(domain.RoleTenant, PermEndLease, nil); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
