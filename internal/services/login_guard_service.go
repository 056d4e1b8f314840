package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "accountsvc/internal/errors"
	"accountsvc/internal/logger"
	"accountsvc/internal/models"
	"accountsvc/internal/password"
)

// maxFailedAttempts is the failure count at which a non-administrator
// account locks automatically.
const maxFailedAttempts = 5

// loginGuardService is the per-user failure counter and lock/unlock state
// machine. Every mutation runs in a transaction holding the target user's
// row, and commits together with the security events it emits.
type loginGuardService struct {
	db     *gorm.DB
	hasher password.Hasher
	audit  AuditServicer
}

// NewLoginGuardService creates a new LoginGuardServicer.
func NewLoginGuardService(db *gorm.DB, hasher password.Hasher, audit AuditServicer) LoginGuardServicer {
	return &loginGuardService{db: db, hasher: hasher, audit: audit}
}

// Authenticate resolves a login attempt. Unknown users and bad passwords
// feed the failure counter and surface as invalid credentials; locked
// accounts are rejected before the password is checked.
func (s *loginGuardService) Authenticate(email, password, path string) (*models.User, error) {
	user, err := findUserByEmail(s.db, email)
	if err != nil {
		if isAppError(err, apperrors.ErrUserNotFound) {
			if gErr := s.OnFailure(email, path); gErr != nil {
				return nil, gErr
			}
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.Locked {
		return nil, apperrors.ErrAccountLocked
	}

	if !s.hasher.Verify(password, user.Password) {
		if gErr := s.OnFailure(email, path); gErr != nil {
			return nil, gErr
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.OnSuccess(email); err != nil {
		return nil, err
	}
	return user, nil
}

// OnFailure records a failed login. Unknown users and administrators only
// produce a LOGIN_FAILED event; for everyone else the failure counter is
// incremented and, at the threshold, the account locks with BRUTE_FORCE and
// LOCK_USER events on top of the LOGIN_FAILED one.
func (s *loginGuardService) OnFailure(email, path string) error {
	normalized := strings.ToLower(email)
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.audit.Record(tx, models.ActionLoginFailed, normalized, path, path); err != nil {
			return err
		}

		user, err := findUserByEmail(lockForUpdate(tx), email)
		if err != nil {
			if isAppError(err, apperrors.ErrUserNotFound) {
				logger.Get().Debugw("failed login for unknown user", "email", normalized)
				return nil
			}
			return err
		}
		if user.IsAdmin() {
			// Administrators are never auto-locked.
			return nil
		}

		user.FailedAttempts++
		if user.FailedAttempts >= maxFailedAttempts {
			user.Locked = true
			if err := s.audit.Record(tx, models.ActionBruteForce, normalized, path, path); err != nil {
				return err
			}
			if err := s.audit.Record(tx, models.ActionLockUser, normalized, "Lock user "+normalized, path); err != nil {
				return err
			}
			logger.Get().Infow("account locked after repeated failures", "email", normalized)
		}

		if err := tx.Model(user).Updates(map[string]any{
			"failed_attempts": user.FailedAttempts,
			"locked":          user.Locked,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// OnSuccess resets the failure counter after a successful login. The user
// must exist; a missing user here is a logic error upstream.
func (s *loginGuardService) OnSuccess(email string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		user, err := findUserByEmail(lockForUpdate(tx), email)
		if err != nil {
			return err
		}
		if user.FailedAttempts == 0 {
			return nil
		}
		if err := tx.Model(user).Update("failed_attempts", 0).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// Lock sets the lock flag by administrative action. Administrator accounts
// cannot be locked.
func (s *loginGuardService) Lock(principal Principal, email, path string) error {
	normalized := strings.ToLower(email)
	return s.db.Transaction(func(tx *gorm.DB) error {
		user, err := findUserByEmail(lockForUpdate(tx), email)
		if err != nil {
			return err
		}
		if user.IsAdmin() {
			return apperrors.WithMessage(apperrors.ErrForbiddenOperation, "Can't lock the ADMINISTRATOR!")
		}

		if err := tx.Model(user).Update("locked", true).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.audit.Record(tx, models.ActionLockUser, normalized, "Lock user "+normalized, path)
	})
}

// Unlock clears the lock flag and resets the failure counter. It is
// idempotent; the event subject is the acting administrator, unlike the
// automatic lock path whose subject is the target account.
func (s *loginGuardService) Unlock(principal Principal, email, path string) error {
	normalized := strings.ToLower(email)
	return s.db.Transaction(func(tx *gorm.DB) error {
		user, err := findUserByEmail(lockForUpdate(tx), email)
		if err != nil {
			return err
		}

		if err := tx.Model(user).Updates(map[string]any{
			"locked":          false,
			"failed_attempts": 0,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.audit.Record(tx, models.ActionUnlockUser, principal.Subject(), "Unlock user "+normalized, path)
	})
}

// isAppError reports whether err carries the same code as the sentinel.
func isAppError(err error, sentinel *apperrors.AppError) bool {
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.Code == sentinel.Code
}
