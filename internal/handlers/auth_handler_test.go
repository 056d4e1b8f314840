package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "accountsvc/internal/errors"
	"accountsvc/internal/middleware"
	"accountsvc/internal/models"
	"accountsvc/internal/services"
	"accountsvc/internal/validator"
)

// --- mock services ---

type mockAccountService struct {
	signUpFn         func(name, lastname, email, password, path string) (*services.UserSummary, error)
	changePasswordFn func(principal services.Principal, newPassword, path string) error
	deleteUserFn     func(principal services.Principal, email, path string) error
	listUsersFn      func() ([]services.UserSummary, error)
}

func (m *mockAccountService) SignUp(name, lastname, email, password, path string) (*services.UserSummary, error) {
	if m.signUpFn != nil {
		return m.signUpFn(name, lastname, email, password, path)
	}
	return &services.UserSummary{}, nil
}

func (m *mockAccountService) ChangePassword(principal services.Principal, newPassword, path string) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(principal, newPassword, path)
	}
	return nil
}

func (m *mockAccountService) DeleteUser(principal services.Principal, email, path string) error {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(principal, email, path)
	}
	return nil
}

func (m *mockAccountService) ListUsers() ([]services.UserSummary, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn()
	}
	return nil, nil
}

type mockLoginGuardService struct {
	authenticateFn func(email, password, path string) (*models.User, error)
	lockFn         func(principal services.Principal, email, path string) error
	unlockFn       func(principal services.Principal, email, path string) error
}

func (m *mockLoginGuardService) Authenticate(email, password, path string) (*models.User, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(email, password, path)
	}
	return &models.User{}, nil
}

func (m *mockLoginGuardService) OnFailure(_, _ string) error { return nil }

func (m *mockLoginGuardService) OnSuccess(_ string) error { return nil }

func (m *mockLoginGuardService) Lock(principal services.Principal, email, path string) error {
	if m.lockFn != nil {
		return m.lockFn(principal, email, path)
	}
	return nil
}

func (m *mockLoginGuardService) Unlock(principal services.Principal, email, path string) error {
	if m.unlockFn != nil {
		return m.unlockFn(principal, email, path)
	}
	return nil
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectPrincipal(p services.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.PrincipalKey, p)
		c.Next()
	}
}

func setupAuthRouter(handler *AuthHandler, principal services.Principal) *gin.Engine {
	r := gin.New()
	r.POST("/api/auth/signup", handler.SignUp)
	r.POST("/api/auth/login", handler.Login)
	r.POST("/api/auth/changepass", injectPrincipal(principal), handler.ChangePassword)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- tests ---

func TestAuthHandler_SignUp(t *testing.T) {
	t.Run("returns 200 with summary", func(t *testing.T) {
		accounts := &mockAccountService{
			signUpFn: func(name, lastname, email, _, _ string) (*services.UserSummary, error) {
				return &services.UserSummary{
					ID: 1, Name: name, Lastname: lastname,
					Email: strings.ToLower(email),
					Roles: []string{"ROLE_ADMINISTRATOR"},
				}, nil
			},
		}
		handler := NewAuthHandler(accounts, &mockLoginGuardService{})
		r := setupAuthRouter(handler, services.Principal{})

		rec := doRequest(r, "POST", "/api/auth/signup",
			`{"name":"John","lastname":"Doe","email":"John@acme.com","password":"longenoughpassword"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["email"] != "john@acme.com" {
			t.Errorf("expected john@acme.com, got %v", result["email"])
		}
		roles := result["roles"].([]interface{})
		if len(roles) != 1 || roles[0] != "ROLE_ADMINISTRATOR" {
			t.Errorf("unexpected roles: %v", roles)
		}
	})

	t.Run("returns 400 on non-corporate email", func(t *testing.T) {
		handler := NewAuthHandler(&mockAccountService{}, &mockLoginGuardService{})
		r := setupAuthRouter(handler, services.Principal{})

		rec := doRequest(r, "POST", "/api/auth/signup",
			`{"name":"John","lastname":"Doe","email":"john@example.com","password":"longenoughpassword"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on missing fields", func(t *testing.T) {
		handler := NewAuthHandler(&mockAccountService{}, &mockLoginGuardService{})
		r := setupAuthRouter(handler, services.Principal{})

		rec := doRequest(r, "POST", "/api/auth/signup", `{"email":"john@acme.com"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on weak password", func(t *testing.T) {
		accounts := &mockAccountService{
			signUpFn: func(_, _, _, _, _ string) (*services.UserSummary, error) {
				return nil, apperrors.ErrWeakPassword
			},
		}
		handler := NewAuthHandler(accounts, &mockLoginGuardService{})
		r := setupAuthRouter(handler, services.Principal{})

		rec := doRequest(r, "POST", "/api/auth/signup",
			`{"name":"John","lastname":"Doe","email":"john@acme.com","password":"short"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "WEAK_PASSWORD")
	})

	t.Run("returns 400 on duplicate email", func(t *testing.T) {
		accounts := &mockAccountService{
			signUpFn: func(_, _, _, _, _ string) (*services.UserSummary, error) {
				return nil, apperrors.ErrUserExists
			},
		}
		handler := NewAuthHandler(accounts, &mockLoginGuardService{})
		r := setupAuthRouter(handler, services.Principal{})

		rec := doRequest(r, "POST", "/api/auth/signup",
			`{"name":"John","lastname":"Doe","email":"john@acme.com","password":"longenoughpassword"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "USER_EXISTS")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns 200 with token and user", func(t *testing.T) {
		guard := &mockLoginGuardService{
			authenticateFn: func(email, _, _ string) (*models.User, error) {
				return &models.User{
					ID:    1,
					Email: email,
					Roles: []models.Role{{ID: 2, Name: models.RoleUser}},
				}, nil
			},
		}
		handler := NewAuthHandler(&mockAccountService{}, guard)
		r := setupAuthRouter(handler, services.Principal{})

		rec := doRequest(r, "POST", "/api/auth/login",
			`{"email":"john@acme.com","password":"longenoughpassword"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["token"] == nil || result["token"] == "" {
			t.Error("expected non-empty token")
		}
		user := result["user"].(map[string]interface{})
		if user["email"] != "john@acme.com" {
			t.Errorf("expected john@acme.com, got %v", user["email"])
		}
	})

	t.Run("returns 401 on invalid credentials", func(t *testing.T) {
		guard := &mockLoginGuardService{
			authenticateFn: func(_, _, _ string) (*models.User, error) {
				return nil, apperrors.ErrInvalidCredentials
			},
		}
		handler := NewAuthHandler(&mockAccountService{}, guard)
		r := setupAuthRouter(handler, services.Principal{})

		rec := doRequest(r, "POST", "/api/auth/login",
			`{"email":"john@acme.com","password":"wrong"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
	})

	t.Run("returns 401 on locked account", func(t *testing.T) {
		guard := &mockLoginGuardService{
			authenticateFn: func(_, _, _ string) (*models.User, error) {
				return nil, apperrors.ErrAccountLocked
			},
		}
		handler := NewAuthHandler(&mockAccountService{}, guard)
		r := setupAuthRouter(handler, services.Principal{})

		rec := doRequest(r, "POST", "/api/auth/login",
			`{"email":"locked@acme.com","password":"longenoughpassword"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ACCOUNT_LOCKED")
	})

	t.Run("returns 400 on missing fields", func(t *testing.T) {
		handler := NewAuthHandler(&mockAccountService{}, &mockLoginGuardService{})
		r := setupAuthRouter(handler, services.Principal{})

		rec := doRequest(r, "POST", "/api/auth/login", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	principal := services.Principal{Email: "john@acme.com", Roles: []models.RoleName{models.RoleUser}}

	t.Run("returns 200 with status message", func(t *testing.T) {
		var gotPrincipal services.Principal
		accounts := &mockAccountService{
			changePasswordFn: func(p services.Principal, _, _ string) error {
				gotPrincipal = p
				return nil
			},
		}
		handler := NewAuthHandler(accounts, &mockLoginGuardService{})
		r := setupAuthRouter(handler, principal)

		rec := doRequest(r, "POST", "/api/auth/changepass",
			`{"new_password":"anotherlongpassword"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["email"] != "john@acme.com" {
			t.Errorf("expected john@acme.com, got %v", result["email"])
		}
		if result["status"] != "The password has been updated successfully" {
			t.Errorf("unexpected status: %v", result["status"])
		}
		if gotPrincipal.Email != principal.Email {
			t.Errorf("principal not passed through, got %v", gotPrincipal)
		}
	})

	t.Run("returns 400 on reused password", func(t *testing.T) {
		accounts := &mockAccountService{
			changePasswordFn: func(_ services.Principal, _, _ string) error {
				return apperrors.ErrPasswordReuse
			},
		}
		handler := NewAuthHandler(accounts, &mockLoginGuardService{})
		r := setupAuthRouter(handler, principal)

		rec := doRequest(r, "POST", "/api/auth/changepass",
			`{"new_password":"longenoughpassword"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "PASSWORD_REUSE")
	})

	t.Run("returns 400 on missing body", func(t *testing.T) {
		handler := NewAuthHandler(&mockAccountService{}, &mockLoginGuardService{})
		r := setupAuthRouter(handler, principal)

		rec := doRequest(r, "POST", "/api/auth/changepass", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
