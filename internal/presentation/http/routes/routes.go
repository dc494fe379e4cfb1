package routes

import (
	"time"

	"github.com/flightworks/aeroops-api/internal/config"
	domainRepo "github.com/flightworks/aeroops-api/internal/domain/repository"
	"github.com/flightworks/aeroops-api/internal/presentation/http/handler"
	"github.com/flightworks/aeroops-api/internal/presentation/http/middleware"
	"github.com/flightworks/aeroops-api/pkg/utils"
	"github.com/gin-gonic/gin"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth     *handler.AuthHandler
	Invoice  *handler.InvoiceHandler
	Booking  *handler.BookingHandler
	Aircraft *handler.AircraftHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-user rate limiter
		rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Auth/Profile routes
	protected.GET("/auth/me", h.Auth.Me)

	// Invoices and payments
	registerInvoiceRoutes(protected, h, deps)

	// Bookings and check-ins
	registerBookingRoutes(protected, h, deps)

	// Fleet
	registerAircraftRoutes(protected, h)

	// Member ledger
	protected.GET("/ledger", h.Invoice.ListLedger)
}

func registerInvoiceRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	idem := middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}

	invoices := protected.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.GET("/:id/payments", h.Invoice.ListPayments)

		billing := invoices.Group("")
		billing.Use(middleware.RequirePermission("manage-billing"))
		{
			// Invoice creation uses idempotency middleware to prevent duplicates
			billing.POST("", middleware.IdempotencyRequired(idem), h.Invoice.Create)
			billing.PATCH("/:id/status", h.Invoice.UpdateStatus)
			billing.POST("/:id/recalculate", h.Invoice.Recalculate)
		}

		payments := invoices.Group("")
		payments.Use(middleware.RequirePermission("record-payments"))
		{
			// Payment recording uses idempotency middleware to prevent duplicates
			payments.POST("/:id/payments", middleware.IdempotencyRequired(idem), h.Invoice.RecordPayment)
		}
	}
}

func registerBookingRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	idem := middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}

	bookings := protected.Group("/bookings")
	{
		bookings.GET("", h.Booking.List)
		bookings.GET("/:id", h.Booking.Get)

		checkins := bookings.Group("")
		checkins.Use(middleware.RequirePermission("approve-checkins"))
		{
			checkins.POST("/:id/checkin", middleware.IdempotencyRequired(idem), h.Booking.ApproveCheckin)
			checkins.POST("/:id/checkin/finalize", h.Booking.FinalizeCheckin)
		}

		corrections := bookings.Group("")
		corrections.Use(middleware.RequirePermission("correct-checkins"))
		{
			corrections.POST("/:id/checkin/correction", h.Booking.CorrectCheckin)
		}
	}
}

func registerAircraftRoutes(protected *gin.RouterGroup, h *Handlers) {
	aircraft := protected.Group("/aircraft")
	{
		aircraft.GET("", h.Aircraft.List)
		aircraft.GET("/:id", h.Aircraft.Get)
	}
}
