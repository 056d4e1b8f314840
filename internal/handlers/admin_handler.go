package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "accountsvc/internal/errors"
	"accountsvc/internal/middleware"
	"accountsvc/internal/models"
	"accountsvc/internal/services"
)

// AdminHandler handles administrator operations: listing users, changing
// roles, locking and unlocking accounts, and deleting users.
type AdminHandler struct {
	accounts services.AccountServicer
	access   services.AccessServicer
	guard    services.LoginGuardServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(accounts services.AccountServicer, access services.AccessServicer, guard services.LoginGuardServicer) *AdminHandler {
	return &AdminHandler{accounts: accounts, access: access, guard: guard}
}

// RoleUpdateRequest asks to grant or remove one role on one user.
type RoleUpdateRequest struct {
	User      string `json:"user" binding:"required,email"`
	Role      string `json:"role" binding:"required,role_name"`
	Operation string `json:"operation" binding:"required,role_operation"`
}

// AccessUpdateRequest asks to lock or unlock one user.
type AccessUpdateRequest struct {
	User      string `json:"user" binding:"required,email"`
	Operation string `json:"operation" binding:"required,access_operation"`
}

// ListUsers returns summaries of every registered user.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	summaries, err := h.accounts.ListUsers()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// UpdateRoles grants or removes a role on the target user.
func (h *AdminHandler) UpdateRoles(c *gin.Context) {
	var req RoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	principal := middleware.GetPrincipal(c)
	role := models.RoleName(req.Role)
	path := c.Request.URL.Path

	var summary *services.UserSummary
	var err error
	switch req.Operation {
	case "GRANT":
		summary, err = h.access.Grant(principal, req.User, role, path)
	case "REMOVE":
		summary, err = h.access.Revoke(principal, req.User, role, path)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// UpdateAccess locks or unlocks the target user.
func (h *AdminHandler) UpdateAccess(c *gin.Context) {
	var req AccessUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	principal := middleware.GetPrincipal(c)
	email := strings.ToLower(req.User)
	path := c.Request.URL.Path

	var err error
	var status string
	switch req.Operation {
	case "LOCK":
		err = h.guard.Lock(principal, email, path)
		status = "User " + email + " locked!"
	case "UNLOCK":
		err = h.guard.Unlock(principal, email, path)
		status = "User " + email + " unlocked!"
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

// DeleteUser removes the target user's record.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "email path parameter is required"))
		return
	}

	principal := middleware.GetPrincipal(c)
	if err := h.accounts.DeleteUser(principal, email, c.Request.URL.Path); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   strings.ToLower(email),
		"status": "Deleted successfully!",
	})
}
