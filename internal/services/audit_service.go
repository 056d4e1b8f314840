package services

import (
	"gorm.io/gorm"

	apperrors "accountsvc/internal/errors"
	"accountsvc/internal/models"
)

// auditService records and reads the append-only security event log.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Record appends one immutable security event using the caller's
// transaction handle, so the event commits atomically with the mutation it
// describes. Storage errors propagate to the caller.
func (s *auditService) Record(tx *gorm.DB, action models.SecurityAction, subject, object, path string) error {
	if tx == nil {
		tx = s.db
	}
	event := &models.SecurityEvent{
		Action:  action,
		Subject: subject,
		Object:  object,
		Path:    path,
	}
	if err := tx.Create(event).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Events returns all security events ordered by creation sequence ascending.
func (s *auditService) Events() ([]models.SecurityEvent, error) {
	var events []models.SecurityEvent
	if err := s.db.Order("id ASC").Find(&events).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return events, nil
}
