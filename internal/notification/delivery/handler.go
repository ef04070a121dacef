package delivery

import (
	"net/http"

	"roadbuddy-backend/internal/notification/dto"
	"roadbuddy-backend/internal/notification/usecase"
	"roadbuddy-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationUsecase usecase.NotificationUsecase
}

func NewNotificationHandler(notificationUsecase usecase.NotificationUsecase) *NotificationHandler {
	return &NotificationHandler{notificationUsecase: notificationUsecase}
}

// GetNotifications lists notifications newest first and marks them read
// GET /api/notifications
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	notifications, err := h.notificationUsecase.ListAndMarkRead(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// GetUnreadCount
// GET /api/notifications/unread-count
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	count, err := h.notificationUsecase.UnreadCount(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// RegisterDevice stores an FCM token for push delivery
// POST /api/notifications/devices
func (h *NotificationHandler) RegisterDevice(c *gin.Context) {
	var req dto.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.notificationUsecase.RegisterDevice(c.GetString("userID"), req.Token, req.DeviceInfo); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "device registered"})
}

// UnregisterDevice
// DELETE /api/notifications/devices/:token
func (h *NotificationHandler) UnregisterDevice(c *gin.Context) {
	if err := h.notificationUsecase.UnregisterDevice(c.GetString("userID"), c.Param("token")); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "device unregistered"})
}
