package models

import (
	"time"

	"gorm.io/gorm"
)

// SecurityAction is the fixed enumeration of audited action kinds.
type SecurityAction string

const (
	ActionCreateUser     SecurityAction = "CREATE_USER"
	ActionChangePassword SecurityAction = "CHANGE_PASSWORD"
	ActionAccessDenied   SecurityAction = "ACCESS_DENIED"
	ActionLoginFailed    SecurityAction = "LOGIN_FAILED"
	ActionGrantRole      SecurityAction = "GRANT_ROLE"
	ActionRemoveRole     SecurityAction = "REMOVE_ROLE"
	ActionLockUser       SecurityAction = "LOCK_USER"
	ActionUnlockUser     SecurityAction = "UNLOCK_USER"
	ActionDeleteUser     SecurityAction = "DELETE_USER"
	ActionBruteForce     SecurityAction = "BRUTE_FORCE"
)

// SecurityEvent is an append-only audit record. It is never updated or
// deleted; retrieval order is by ID ascending, which follows creation order.
type SecurityEvent struct {
	ID      uint           `gorm:"primaryKey" json:"id"`
	Date    time.Time      `gorm:"not null" json:"date"`
	Action  SecurityAction `gorm:"not null" json:"action"`
	Subject string         `gorm:"not null" json:"subject"`
	Object  string         `gorm:"not null" json:"object"`
	Path    string         `gorm:"not null" json:"path"`
}

// BeforeCreate stamps the event with the recording time if none was set.
func (e *SecurityEvent) BeforeCreate(tx *gorm.DB) error {
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	return nil
}
