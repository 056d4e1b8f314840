package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "accountsvc/internal/errors"
	"accountsvc/internal/logger"
	"accountsvc/internal/models"
)

// roleService manages the fixed role reference data.
type roleService struct {
	db *gorm.DB
}

// NewRoleService creates a new RoleServicer.
func NewRoleService(db *gorm.DB) RoleServicer {
	return &roleService{db: db}
}

// EnsureRoles creates any missing role records. It runs at process
// bootstrap and is idempotent.
func (s *roleService) EnsureRoles() error {
	for _, name := range models.AllRoles {
		var count int64
		if err := s.db.Model(&models.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			continue
		}
		if err := s.db.Create(&models.Role{Name: name}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		logger.Get().Infow("created role", "role", name)
	}
	return nil
}

// GetByName retrieves a role record by its fixed name.
func (s *roleService) GetByName(tx *gorm.DB, name models.RoleName) (*models.Role, error) {
	if tx == nil {
		tx = s.db
	}
	var role models.Role
	if err := tx.Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &role, nil
}
