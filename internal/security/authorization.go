package security

import (
	"fmt"
	"log/slog"

	"github.com/yourorg/rentease/internal/domain"
)

// Permission represents an action permission
type Permission string

const (
	PermManageUsers      Permission = "manage_users"
	PermManageTenants    Permission = "manage_tenants"
	PermManageProperties Permission = "manage_properties"
	PermCreateLease      Permission = "create_lease"
	PermEndLease         Permission = "end_lease"
	PermViewAllLeases    Permission = "view_all_leases"
	PermCreatePayment    Permission = "create_payment"
	PermDeletePayment    Permission = "delete_payment"
	PermViewStatistics   Permission = "view_statistics"
	PermUploadFile       Permission = "upload_file"
	PermViewOwnLeases    Permission = "view_own_leases"
	PermViewOwnPayments  Permission = "view_own_payments"
)

// RolePermissions maps roles to their permissions. Admin can do everything,
// owners manage their own properties and tenants, tenants read their own data.
var RolePermissions = map[domain.Role][]Permission{
	domain.RoleAdmin: {
		PermManageUsers,
		PermManageTenants,
		PermManageProperties,
		PermCreateLease,
		PermEndLease,
		PermViewAllLeases,
		PermCreatePayment,
		PermDeletePayment,
		PermViewStatistics,
		PermUploadFile,
		PermViewOwnLeases,
		PermViewOwnPayments,
	},
	domain.RoleOwner: {
		PermManageTenants,
		PermManageProperties,
		PermCreateLease,
		PermEndLease,
		PermCreatePayment,
		PermDeletePayment,
		PermViewStatistics,
		PermUploadFile,
		PermViewOwnLeases,
		PermViewOwnPayments,
	},
	domain.RoleTenant: {
		PermUploadFile,
		PermViewOwnLeases,
		PermViewOwnPayments,
	},
}

// HasPermission checks whether a role grants a permission
func HasPermission(role domain.Role, perm Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// RequirePermission returns a ForbiddenError if the role lacks the permission
func RequirePermission(role domain.Role, perm Permission, log *slog.Logger) error {
	if HasPermission(role, perm) {
		return nil
	}
	if log != nil {
		log.Warn("permission denied",
			slog.String("role", string(role)),
			slog.String("permission", string(perm)),
		)
	}
	return domain.Forbidden("not enough permissions")
}

// String implements fmt.Stringer for logging
func (p Permission) String() string {
	return string(p)
}

var _ fmt.Stringer = Permission("")
