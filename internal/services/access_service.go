package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "accountsvc/internal/errors"
	"accountsvc/internal/logger"
	"accountsvc/internal/models"
)

// accessService grants and revokes business roles under the exclusivity
// and minimum-role invariants. Each operation is a single atomic
// read-modify-write on the target user's row.
type accessService struct {
	db    *gorm.DB
	roles RoleServicer
	audit AuditServicer
}

// NewAccessService creates a new AccessServicer.
func NewAccessService(db *gorm.DB, roles RoleServicer, audit AuditServicer) AccessServicer {
	return &accessService{db: db, roles: roles, audit: audit}
}

// Grant adds a business role to the target user. Granting to an
// administrator, granting ADMINISTRATOR itself, or granting a role the user
// already holds all fail without side effects.
func (s *accessService) Grant(principal Principal, targetEmail string, role models.RoleName, path string) (*UserSummary, error) {
	normalized := strings.ToLower(targetEmail)
	var summary *UserSummary
	err := s.db.Transaction(func(tx *gorm.DB) error {
		user, err := findUserByEmail(lockForUpdate(tx), targetEmail)
		if err != nil {
			return err
		}

		if user.IsAdmin() || role == models.RoleAdministrator {
			return apperrors.WithMessage(apperrors.ErrInvalidRoleOperation,
				"The user cannot combine administrative and business roles!")
		}
		if user.HasRole(role) {
			return apperrors.WithMessage(apperrors.ErrInvalidRoleOperation, "Role already exists")
		}

		grantedRole, err := s.roles.GetByName(tx, role)
		if err != nil {
			return err
		}
		if err := tx.Model(user).Association("Roles").Append(grantedRole); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		user.Roles = append(user.Roles, *grantedRole)
		logger.Get().Debugw("granted role", "role", role, "email", normalized)

		if err := s.audit.Record(tx, models.ActionGrantRole, principal.Subject(),
			"Grant role "+string(role)+" to "+normalized, path); err != nil {
			return err
		}

		result := NewUserSummary(user)
		summary = &result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Revoke removes a role from the target user. Revoking from an
// administrator, revoking a role the user does not hold, or revoking the
// last remaining role all fail without side effects.
func (s *accessService) Revoke(principal Principal, targetEmail string, role models.RoleName, path string) (*UserSummary, error) {
	normalized := strings.ToLower(targetEmail)
	var summary *UserSummary
	err := s.db.Transaction(func(tx *gorm.DB) error {
		user, err := findUserByEmail(lockForUpdate(tx), targetEmail)
		if err != nil {
			return err
		}

		if user.IsAdmin() {
			return apperrors.WithMessage(apperrors.ErrInvalidRoleOperation, "Can't remove ADMINISTRATOR role!")
		}
		if !user.HasRole(role) {
			return apperrors.WithMessage(apperrors.ErrInvalidRoleOperation, "The user does not have a role!")
		}
		if len(user.Roles) == 1 {
			return apperrors.WithMessage(apperrors.ErrInvalidRoleOperation, "The user must have at least one role!")
		}

		revokedRole, err := s.roles.GetByName(tx, role)
		if err != nil {
			return err
		}
		if err := tx.Model(user).Association("Roles").Delete(revokedRole); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		remaining := user.Roles[:0]
		for _, r := range user.Roles {
			if r.Name != role {
				remaining = append(remaining, r)
			}
		}
		user.Roles = remaining
		logger.Get().Debugw("revoked role", "role", role, "email", normalized)

		if err := s.audit.Record(tx, models.ActionRemoveRole, principal.Subject(),
			"Remove role "+string(role)+" from "+normalized, path); err != nil {
			return err
		}

		result := NewUserSummary(user)
		summary = &result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
