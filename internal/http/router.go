package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(handler *Handler, authMiddleware, rateLimit gin.HandlerFunc, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{"Content-Type", "Content-Disposition"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	protected := router.Group("/api/v1")
	protected.Use(authMiddleware, rateLimit)
	{
		protected.GET("/requests", handler.listRequests)
		protected.POST("/requests", handler.createRequest)
		protected.POST("/requests/admin", handler.adminCreateRequest)
		protected.GET("/requests/export", handler.exportRequests)
		protected.GET("/requests/:id", handler.getRequest)
		protected.GET("/requests/:id/events", handler.listRequestEvents)
		protected.GET("/requests/:id/responses/latest", handler.latestResponse)
		protected.POST("/requests/:id/submit", handler.submitRequest)
		protected.POST("/requests/:id/actions", handler.actOnRequest)
		protected.POST("/requests/:id/assign", handler.assignRequest)
		protected.POST("/requests/:id/responses", handler.respondToRequest)
		protected.POST("/requests/:id/payments", handler.attachPayment)

		protected.POST("/requests/:id/bookings", handler.bookLeg)
		protected.POST("/requests/:id/bookings/confirm", handler.confirmBooking)
		protected.GET("/requests/:id/departure-options", handler.departureOptions)

		protected.GET("/trips", handler.listTrips)
		protected.GET("/trips/:id", handler.getTrip)
		protected.GET("/trips/:id/stops", handler.listTripStops)

		protected.GET("/notifications", handler.listNotifications)
		protected.POST("/notifications/:id/read", handler.markNotificationRead)
	}

	return router
}
