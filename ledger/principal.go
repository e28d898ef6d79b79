package ledger

import (
	"capitalrise/apperrors"
	"capitalrise/models"
)

type Role string

const (
	RoleUser       Role = "User"
	RoleSuperAdmin Role = Role(models.AdminRoleSuperAdmin)
	RoleAdmin      Role = Role(models.AdminRoleAdmin)
	RoleSupport    Role = Role(models.AdminRoleSupport)
)

// Principal is the authenticated caller, resolved once at the request boundary.
type Principal struct {
	ID     string
	Name   string
	Role   Role
	IP     string
	Device string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleSuperAdmin || p.Role == RoleAdmin || p.Role == RoleSupport
}

// canRead: any admin role.
func (p Principal) canRead() error {
	if !p.IsAdmin() {
		return apperrors.ErrForbidden
	}
	return nil
}

// canProcess: approve, reject and adjust balances. Support is read-only.
func (p Principal) canProcess() error {
	if p.Role != RoleSuperAdmin && p.Role != RoleAdmin {
		return apperrors.ErrForbidden
	}
	return nil
}

func (p Principal) canConfigure() error {
	if p.Role != RoleSuperAdmin {
		return apperrors.ErrForbidden
	}
	return nil
}
