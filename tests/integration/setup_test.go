package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"accountsvc/internal/handlers"
	"accountsvc/internal/logger"
	"accountsvc/internal/middleware"
	"accountsvc/internal/models"
	"accountsvc/internal/password"
	"accountsvc/internal/services"
	"accountsvc/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Role{},
		&models.SecurityEvent{},
		&models.Payment{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	hasher := password.NewBcryptHasher(0)
	policy := services.NewPasswordPolicy(hasher)
	auditService := services.NewAuditService(db)
	roleService := services.NewRoleService(db)
	userService := services.NewUserService(db)
	guardService := services.NewLoginGuardService(db, hasher, auditService)
	accessService := services.NewAccessService(db, roleService, auditService)
	accountService := services.NewAccountService(db, hasher, policy, roleService, auditService)
	paymentService := services.NewPaymentService(db, userService)

	if err := roleService.EnsureRoles(); err != nil {
		t.Fatalf("failed to seed roles: %v", err)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(accountService, guardService)
	adminHandler := handlers.NewAdminHandler(accountService, accessService, guardService)
	eventsHandler := handlers.NewEventsHandler(auditService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/login", authHandler.Login)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(userService))

	protected.POST("/auth/changepass", authHandler.ChangePassword)

	empl := protected.Group("/empl")
	empl.Use(middleware.RequireRoles(auditService, models.RoleUser, models.RoleAccountant))
	empl.GET("/payment", paymentHandler.GetPayment)

	acct := protected.Group("/acct")
	acct.Use(middleware.RequireRoles(auditService, models.RoleAccountant))
	acct.POST("/payments", paymentHandler.UploadPayrolls)
	acct.PUT("/payments", paymentHandler.UpdateSalary)

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRoles(auditService, models.RoleAdministrator))
	admin.GET("/user/", adminHandler.ListUsers)
	admin.PUT("/user/role", adminHandler.UpdateRoles)
	admin.PUT("/user/access", adminHandler.UpdateAccess)
	admin.DELETE("/user/:email", adminHandler.DeleteUser)

	security := protected.Group("/security")
	security.Use(middleware.RequireRoles(auditService, models.RoleAuditor))
	security.GET("/events/", eventsHandler.ListEvents)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// parseJSONList parses the response body into a slice of maps.
func parseJSONList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var result []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON list: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// signUp registers a new user and returns the response summary. The first
// caller in a fresh database becomes the administrator.
func (app *testApp) signUp(t *testing.T, name, email, pwd string) map[string]interface{} {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"lastname":"Tester","email":%q,"password":%q}`, name, email, pwd)
	rec := app.request("POST", "/api/auth/signup", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("signup failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)
}

// login authenticates and returns the bearer token.
func (app *testApp) login(t *testing.T, email, pwd string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, pwd)
	rec := app.request("POST", "/api/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["token"].(string)
}

// grantRole grants a role to a user through the admin endpoint.
func (app *testApp) grantRole(t *testing.T, adminToken, email, role string) {
	t.Helper()
	body := fmt.Sprintf(`{"user":%q,"role":%q,"operation":"GRANT"}`, email, role)
	rec := app.request("PUT", "/api/admin/user/role", body, adminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("grant %s to %s failed: %d %s", role, email, rec.Code, rec.Body.String())
	}
}
