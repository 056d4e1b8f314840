package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "accountsvc/internal/errors"
	"accountsvc/internal/models"
)

// userService handles user lookups. All email matching normalizes to
// lower case.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// GetByEmail retrieves a user (with roles) by email, case-insensitively.
func (s *userService) GetByEmail(email string) (*models.User, error) {
	return findUserByEmail(s.db, email)
}

// Exists reports whether a user with the given email is registered.
func (s *userService) Exists(email string) (bool, error) {
	var count int64
	err := s.db.Model(&models.User{}).Where("LOWER(email) = ?", strings.ToLower(email)).Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// findUserByEmail loads a user with roles through the given handle, which
// may be a transaction carrying a row lock.
func findUserByEmail(tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := tx.Preload("Roles").Where("LOWER(email) = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}
