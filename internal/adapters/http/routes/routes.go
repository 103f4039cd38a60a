package routes

import (
	"vaccitrack/internal/adapters/http/handlers"
	"vaccitrack/internal/adapters/http/middleware"
	"vaccitrack/internal/adapters/persistence/repositories"
	"vaccitrack/internal/config"
	"vaccitrack/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	childRepo := repositories.NewChildRepository(db)
	requestRepo := repositories.NewVaccinationRequestRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	adminService := services.NewAdminService(userRepo)
	childService := services.NewChildService(childRepo)
	vaccinationService := services.NewVaccinationService(db, childRepo, requestRepo)
	dashboardService := services.NewDashboardService(userRepo, childRepo, requestRepo)
	certificateService := services.NewCertificateService(childRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	adminHandler := handlers.NewAdminHandler(adminService)
	childHandler := handlers.NewChildHandler(childService)
	vaccinationHandler := handlers.NewVaccinationHandler(vaccinationService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	certificateHandler := handlers.NewCertificateHandler(certificateService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public, rate limited)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Child routes (authenticated)
	childRoutes := apiV1.Group("/children")
	childRoutes.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	setupChildRoutes(childRoutes, childHandler, vaccinationHandler, certificateHandler)

	// Vaccination request routes (authenticated)
	requestRoutes := apiV1.Group("/vaccination-requests")
	requestRoutes.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	setupRequestRoutes(requestRoutes, vaccinationHandler)

	// Dashboard (authenticated, role-aware)
	dashboardRoutes := apiV1.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	dashboardRoutes.Get("/", dashboardHandler.Stats)

	// Admin routes (admin only)
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	adminRoutes.Use(middleware.AdminOnly())
	setupAdminRoutes(adminRoutes, adminHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (5 req/min/IP against brute force)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg.JWT.Secret), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg.JWT.Secret), handler.LogoutAll)
}

// setupChildRoutes configures child and schedule routes
func setupChildRoutes(
	router fiber.Router,
	childHandler *handlers.ChildHandler,
	vaccinationHandler *handlers.VaccinationHandler,
	certificateHandler *handlers.CertificateHandler,
) {
	// Search must precede /:id so "search" is not parsed as an ID
	router.Get("/search", middleware.DoctorOrAdmin(), childHandler.Search)

	router.Post("/", childHandler.Create)
	router.Get("/", childHandler.List)
	router.Get("/:id", childHandler.Get)
	router.Put("/:id", childHandler.Update)
	router.Delete("/:id", childHandler.Delete)
	router.Get("/:id/summary", childHandler.Summary)
	router.Get("/:id/requests", vaccinationHandler.ChildHistory)

	// Per-entry operations
	router.Post("/:childId/schedule/:entryId/request", vaccinationHandler.RequestCompletion)
	router.Get("/:childId/schedule/:entryId/certificate", certificateHandler.Get)
	router.Get("/:childId/schedule/:entryId/certificate/qr", certificateHandler.QR)
}

// setupRequestRoutes configures vaccination request routes
func setupRequestRoutes(router fiber.Router, handler *handlers.VaccinationHandler) {
	// Parent-facing
	router.Get("/mine", handler.ListMine)
	router.Post("/:id/cancel", handler.Cancel)

	// Review queue (doctor/admin)
	router.Get("/pending", middleware.DoctorOrAdmin(), handler.ListPending)
	router.Get("/", middleware.DoctorOrAdmin(), handler.List)
	router.Post("/:id/approve", middleware.DoctorOrAdmin(), handler.Approve)
	router.Post("/:id/reject", middleware.DoctorOrAdmin(), handler.Reject)

	router.Get("/:id", handler.Get)
}

// setupAdminRoutes configures admin routes
func setupAdminRoutes(router fiber.Router, handler *handlers.AdminHandler) {
	router.Get("/doctors", handler.ListDoctors)
	router.Get("/doctors/pending", handler.ListPendingDoctors)
	router.Post("/doctors/:id/approve", handler.ApproveDoctor)
	router.Post("/doctors/:id/reject", handler.RejectDoctor)

	router.Get("/users", handler.ListUsers)
	router.Post("/users/:id/deactivate", handler.DeactivateUser)
	router.Post("/users/:id/reactivate", handler.ReactivateUser)
}
