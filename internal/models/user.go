package models

import "time"

// User represents an account holder. Email is the natural login key and is
// stored lower-cased; matching is case-insensitive at the store layer.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Lastname       string    `gorm:"not null" json:"lastname"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	Locked         bool      `gorm:"not null;default:false" json:"-"`
	FailedAttempts int       `gorm:"not null;default:0" json:"-"`
	Roles          []Role    `gorm:"many2many:user_roles" json:"roles,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(name RoleName) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user holds the ADMINISTRATOR role.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdministrator)
}
