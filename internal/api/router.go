package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Alilen9/renthub-sub001/internal/api/handlers"
	"github.com/Alilen9/renthub-sub001/internal/api/middleware"
	"github.com/Alilen9/renthub-sub001/internal/auth"
	"github.com/Alilen9/renthub-sub001/internal/config"
	"github.com/Alilen9/renthub-sub001/internal/services"
	"github.com/Alilen9/renthub-sub001/internal/storage"
	"github.com/Alilen9/renthub-sub001/internal/store"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, st store.Store, mediaStorage storage.IMediaStorage, taskClient handlers.IAsynqClient) *gin.Engine {
	// Initialize services needed by API handlers
	faultService := services.NewFaultService(st)
	listingService := services.NewListingService(st, cfg.DefaultCurrencyCode)
	reservationService := services.NewReservationService(st, listingService, cfg.DepositRate)

	r := gin.Default()

	// Apply global middleware first (order matters)
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	faultHandler := handlers.NewFaultHandler(faultService, taskClient, cfg.LandlordEmail)
	listingHandler := handlers.NewListingHandler(listingService, mediaStorage, taskClient)
	reservationHandler := handlers.NewReservationHandler(reservationService)

	v1 := r.Group("/v1")
	{
		// Public routes
		v1.GET("/listing", listingHandler.ListListings)
		v1.GET("/listing/:id", listingHandler.GetListingByID)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Escrow provider callback. Authenticated by the provider's
		// reference, not a user token.
		v1.POST("/payment/:id/transaction", reservationHandler.RecordTransaction)

		// Authenticated routes
		authRequired := v1.Group("/")
		authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			authRequired.POST("/fault", middleware.RequireRole(auth.RoleTenant), faultHandler.ReportFault)
			authRequired.GET("/fault", faultHandler.ListFaults)
			authRequired.GET("/fault/:id", faultHandler.GetFaultByID)
			authRequired.POST("/fault/:id/assign", middleware.RequireRole(auth.RoleLandlord), faultHandler.AssignFault)
			authRequired.POST("/fault/:id/progress", middleware.RequireRole(auth.RoleSPN), faultHandler.UpdateFaultProgress)
			authRequired.POST("/fault/:id/resolve", middleware.RequireRole(auth.RoleLandlord, auth.RoleSPN), faultHandler.ResolveFault)
			authRequired.POST("/fault/:id/priority", middleware.RequireRole(auth.RoleLandlord), faultHandler.SetFaultPriority)
			authRequired.POST("/fault/:id/message", faultHandler.AppendFaultMessage)

			authRequired.POST("/listing", middleware.RequireRole(auth.RoleLandlord), listingHandler.PublishListing)
			authRequired.POST("/listing/media/presign", middleware.RequireRole(auth.RoleLandlord), listingHandler.PresignMediaUpload)
			authRequired.POST("/listing/:id/reserve", middleware.RequireRole(auth.RoleTenant), reservationHandler.InitiateReservation)
		}
	}

	return r
}
