package api

import (
	"net/http"

	"roadbuddy-backend/internal/auth/delivery"
	authUsecase "roadbuddy-backend/internal/auth/usecase"
	"roadbuddy-backend/pkg/metrics"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase authUsecase.AuthUsecase, h Handlers) {
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		requireAuth := delivery.AuthMiddleware(authUsecase)

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.Auth.Signup)
			auth.POST("/verify", h.Auth.Verify)
			auth.GET("/me", requireAuth, h.Auth.Me)
			auth.POST("/logout", h.Auth.Logout)
		}

		api.GET("/users/me/id", requireAuth, h.Auth.UserID)

		// Vehicle routes (protected)
		vehicles := api.Group("/vehicles")
		vehicles.Use(requireAuth)
		{
			vehicles.POST("", h.Vehicle.AddVehicle)
			vehicles.GET("", h.Vehicle.GetVehicles)
		}

		// Ride routes (protected)
		rides := api.Group("/rides")
		rides.Use(requireAuth)
		{
			rides.POST("", h.Ride.PostRide)
			rides.GET("/available", h.Ride.GetAvailableRides)
			rides.GET("/upcoming", h.Ride.GetUpcomingRides)
			rides.GET("/:id", h.Ride.GetRide)
			rides.POST("/:id/join", h.Ride.JoinRide)
			rides.POST("/:id/cancel", h.Ride.CancelRide)
			rides.DELETE("/:id", h.Ride.DeleteRide)
		}

		// Payment routes (protected)
		payments := api.Group("/payments")
		payments.Use(requireAuth)
		{
			payments.POST("/sheet", h.Payment.CreatePaymentSheet)
		}

		// Chat routes (protected)
		chats := api.Group("/chats")
		chats.Use(requireAuth)
		{
			chats.GET("", h.Chat.GetChats)
			chats.POST("/:rideId/messages", h.Chat.SendMessage)
			chats.GET("/:rideId/messages", h.Chat.GetMessages)
			chats.GET("/:rideId/exists", h.Chat.ChatExists)
		}

		// Notification routes (protected)
		notifications := api.Group("/notifications")
		notifications.Use(requireAuth)
		{
			notifications.GET("", h.Notification.GetNotifications)
			notifications.GET("/unread-count", h.Notification.GetUnreadCount)
			notifications.POST("/devices", h.Notification.RegisterDevice)
			notifications.DELETE("/devices/:token", h.Notification.UnregisterDevice)
		}
	}
}
