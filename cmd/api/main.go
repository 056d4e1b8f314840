package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"accountsvc/internal/config"
	"accountsvc/internal/database"
	"accountsvc/internal/handlers"
	"accountsvc/internal/logger"
	"accountsvc/internal/middleware"
	"accountsvc/internal/models"
	"accountsvc/internal/password"
	"accountsvc/internal/services"
	"accountsvc/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	hasher := password.NewBcryptHasher(0)
	policy := services.NewPasswordPolicy(hasher)
	auditService := services.NewAuditService(db)
	roleService := services.NewRoleService(db)
	userService := services.NewUserService(db)
	guardService := services.NewLoginGuardService(db, hasher, auditService)
	accessService := services.NewAccessService(db, roleService, auditService)
	accountService := services.NewAccountService(db, hasher, policy, roleService, auditService)
	paymentService := services.NewPaymentService(db, userService)

	// Seed the fixed role records
	if err := roleService.EnsureRoles(); err != nil {
		return fmt.Errorf("failed to initialize roles: %w", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(accountService, guardService)
	adminHandler := handlers.NewAdminHandler(accountService, accessService, guardService)
	eventsHandler := handlers.NewEventsHandler(auditService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/login", authHandler.Login)

	// Authenticated routes; each group checks a static role mapping.
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

	log.Infof("Starting account service on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
