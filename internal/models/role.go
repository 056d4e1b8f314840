package models

// RoleName is one of the fixed authorization labels attached to users.
type RoleName string

const (
	RoleAdministrator RoleName = "ADMINISTRATOR"
	RoleUser          RoleName = "USER"
	RoleAccountant    RoleName = "ACCOUNTANT"
	RoleAuditor       RoleName = "AUDITOR"
)

// AllRoles lists every role the service knows about, in bootstrap order.
var AllRoles = []RoleName{RoleAdministrator, RoleUser, RoleAccountant, RoleAuditor}

// IsValidRole reports whether name is a member of the fixed role set.
func IsValidRole(name RoleName) bool {
	switch name {
	case RoleAdministrator, RoleUser, RoleAccountant, RoleAuditor:
		return true
	}
	return false
}

// Role is immutable reference data with at most one record per name,
// created once at process bootstrap.
type Role struct {
	ID   uint     `gorm:"primaryKey" json:"id"`
	Name RoleName `gorm:"uniqueIndex;not null" json:"name"`
}
