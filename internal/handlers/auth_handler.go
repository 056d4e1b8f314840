package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "accountsvc/internal/errors"
	"accountsvc/internal/middleware"
	"accountsvc/internal/services"
)

// AuthHandler handles sign-up, login, and password change requests.
type AuthHandler struct {
	accounts services.AccountServicer
	guard    services.LoginGuardServicer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts services.AccountServicer, guard services.LoginGuardServicer) *AuthHandler {
	return &AuthHandler{accounts: accounts, guard: guard}
}

// SignUpRequest represents the registration request payload.
type SignUpRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Lastname string `json:"lastname" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=255,corporate_email"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest represents the password change payload.
type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,max=128"`
}

// SignUp handles user registration.
// @Summary     Register a new user
// @Description The first user ever registered becomes the administrator.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body SignUpRequest true "User registration data"
// @Success     200 {object} services.UserSummary "User registered"
// @Failure     400 {object} ErrorResponse "Invalid input or weak password"
// @Router      /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	summary, err := h.accounts.SignUp(req.Name, req.Lastname, req.Email, req.Password, c.Request.URL.Path)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Login authenticates a user and issues a JWT.
// @Summary     Login user
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} map[string]any "Token and user summary"
// @Failure     401 {object} ErrorResponse "Invalid credentials or locked account"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.guard.Authenticate(req.Email, req.Password, c.Request.URL.Path)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  services.NewUserSummary(user),
	})
}

// ChangePassword replaces the authenticated user's password.
// @Summary     Change password
// @Tags        auth
// @Security    BearerAuth
// @Success     200 {object} map[string]string "Email and status"
// @Failure     400 {object} ErrorResponse "Weak or reused password"
// @Router      /auth/changepass [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	principal := middleware.GetPrincipal(c)
	if err := h.accounts.ChangePassword(principal, req.NewPassword, c.Request.URL.Path); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":  principal.Email,
		"status": "The password has been updated successfully",
	})
}
