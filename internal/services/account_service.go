package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "accountsvc/internal/errors"
	"accountsvc/internal/logger"
	"accountsvc/internal/models"
	"accountsvc/internal/password"
)

// accountService orchestrates sign-up, password change, deletion, and user
// listing on top of the stores, the password policy, and the audit log.
type accountService struct {
	db     *gorm.DB
	hasher password.Hasher
	policy *PasswordPolicy
	roles  RoleServicer
	audit  AuditServicer
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB, hasher password.Hasher, policy *PasswordPolicy, roles RoleServicer, audit AuditServicer) AccountServicer {
	return &accountService{db: db, hasher: hasher, policy: policy, roles: roles, audit: audit}
}

// SignUp registers a new user. The very first user registered becomes
// ADMINISTRATOR; everyone after that becomes USER.
func (s *accountService) SignUp(name, lastname, email, plain, path string) (*UserSummary, error) {
	if name == "" || lastname == "" || email == "" || plain == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name, lastname, email and password are required")
	}

	if err := s.policy.ValidateStrength(plain); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(plain)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	normalized := strings.ToLower(email)
	var summary *UserSummary
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("LOWER(email) = ?", normalized).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrUserExists
		}

		var total int64
		if err := tx.Model(&models.User{}).Count(&total).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		bootstrapRole := models.RoleUser
		if total == 0 {
			bootstrapRole = models.RoleAdministrator
		}
		role, err := s.roles.GetByName(tx, bootstrapRole)
		if err != nil {
			return err
		}

		user := &models.User{
			Name:     name,
			Lastname: lastname,
			Email:    normalized,
			Password: hashed,
			Locked:   false,
			Roles:    []models.Role{*role},
		}
		if err := tx.Create(user).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		logger.Get().Infow("registered user", "email", normalized, "role", bootstrapRole)

		if err := s.audit.Record(tx, models.ActionCreateUser, AnonymousSubject, normalized, path); err != nil {
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

// ChangePassword replaces the caller's password after strength and reuse
// checks. A failed check produces no audit event and no persisted change.
func (s *accountService) ChangePassword(principal Principal, newPlain, path string) error {
	if principal.IsAnonymous() {
		return apperrors.WithMessage(apperrors.ErrAuthenticationRequired, "Authentication required to change password")
	}

	if err := s.policy.ValidateStrength(newPlain); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		user, err := findUserByEmail(lockForUpdate(tx), principal.Email)
		if err != nil {
			return err
		}

		if err := s.policy.ValidateDistinct(newPlain, user.Password); err != nil {
			return err
		}

		hashed, err := s.hasher.Hash(newPlain)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(user).Update("password", hashed).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return s.audit.Record(tx, models.ActionChangePassword, user.Email, user.Email, path)
	})
}

// DeleteUser removes a user record. Administrator accounts are protected.
// The DELETE_USER event commits in the same transaction as the removal.
func (s *accountService) DeleteUser(principal Principal, email, path string) error {
	normalized := strings.ToLower(email)
	return s.db.Transaction(func(tx *gorm.DB) error {
		user, err := findUserByEmail(lockForUpdate(tx), email)
		if err != nil {
			return err
		}
		if user.IsAdmin() {
			return apperrors.WithMessage(apperrors.ErrForbiddenOperation, "Can't remove ADMINISTRATOR role!")
		}

		if err := s.audit.Record(tx, models.ActionDeleteUser, strings.ToLower(principal.Subject()), normalized, path); err != nil {
			return err
		}

		if err := tx.Model(user).Association("Roles").Clear(); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(user).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		logger.Get().Infow("deleted user", "email", normalized)
		return nil
	})
}

// ListUsers returns role-enriched summaries of all users ordered by ID.
func (s *accountService) ListUsers() ([]UserSummary, error) {
	var users []models.User
	if err := s.db.Preload("Roles").Order("id ASC").Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	summaries := make([]UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, NewUserSummary(&users[i]))
	}
	return summaries, nil
}
