package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	authDelivery "roadbuddy-backend/internal/auth/delivery"
	authUsecase "roadbuddy-backend/internal/auth/usecase"
	chatDelivery "roadbuddy-backend/internal/chat/delivery"
	notificationDelivery "roadbuddy-backend/internal/notification/delivery"
	paymentDelivery "roadbuddy-backend/internal/payment/delivery"
	rideDelivery "roadbuddy-backend/internal/ride/delivery"
	vehicleDelivery "roadbuddy-backend/internal/vehicle/delivery"
	"roadbuddy-backend/pkg/config"
	"roadbuddy-backend/pkg/logger"
	"roadbuddy-backend/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	authUsecase         authUsecase.AuthUsecase
	config              *config.Config
	authHandler         *authDelivery.AuthHandler
	rideHandler         *rideDelivery.RideHandler
	vehicleHandler      *vehicleDelivery.VehicleHandler
	chatHandler         *chatDelivery.ChatHandler
	notificationHandler *notificationDelivery.NotificationHandler
	paymentHandler      *paymentDelivery.PaymentHandler
}

// Handlers groups the feature handlers mounted by SetupRoutes.
type Handlers struct {
	Auth         *authDelivery.AuthHandler
	Ride         *rideDelivery.RideHandler
	Vehicle      *vehicleDelivery.VehicleHandler
	Chat         *chatDelivery.ChatHandler
	Notification *notificationDelivery.NotificationHandler
	Payment      *paymentDelivery.PaymentHandler
}

func NewHandler(authUc authUsecase.AuthUsecase, cfg *config.Config, handlers Handlers) *Handler {
	return &Handler{
		authUsecase:         authUc,
		config:              cfg,
		authHandler:         handlers.Auth,
		rideHandler:         handlers.Ride,
		vehicleHandler:      handlers.Vehicle,
		chatHandler:         handlers.Chat,
		notificationHandler: handlers.Notification,
		paymentHandler:      handlers.Payment,
	}
}

// Engine builds the gin engine with middleware and every route.
func (h *Handler) Engine() *gin.Engine {
	gin.SetMode(h.config.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), metrics.Middleware(), corsMiddleware())

	SetupRoutes(r, h.authUsecase, Handlers{
		Auth:         h.authHandler,
		Ride:         h.rideHandler,
		Vehicle:      h.vehicleHandler,
		Chat:         h.chatHandler,
		Notification: h.notificationHandler,
		Payment:      h.paymentHandler,
	})
	return r
}

// Start serves on addr until ctx is cancelled, then drains in-flight
// requests for up to ten seconds.
func (h *Handler) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("[HTTP] Listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("[HTTP] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("[HTTP] Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
