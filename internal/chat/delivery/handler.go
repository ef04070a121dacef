package delivery

import (
	"net/http"

	authdelivery "roadbuddy-backend/internal/auth/delivery"
	"roadbuddy-backend/internal/chat/dto"
	"roadbuddy-backend/internal/chat/usecase"
	"roadbuddy-backend/pkg/apperror"
	"roadbuddy-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatUsecase usecase.ChatUsecase
}

func NewChatHandler(chatUsecase usecase.ChatUsecase) *ChatHandler {
	return &ChatHandler{chatUsecase: chatUsecase}
}

// SendMessage posts to a ride chat the caller participates in
// POST /api/chats/:rideId/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user := authdelivery.CurrentUser(c)
	if user == nil {
		response.Error(c, apperror.ErrUnauthenticated)
		return
	}

	msg, err := h.chatUsecase.SendMessage(c.Request.Context(), c.Param("rideId"), user.UID, user.Name, req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// GetMessages
// GET /api/chats/:rideId/messages
func (h *ChatHandler) GetMessages(c *gin.Context) {
	messages, err := h.chatUsecase.ListMessages(c.Request.Context(), c.Param("rideId"), c.GetString("userID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// ChatExists
// GET /api/chats/:rideId/exists
func (h *ChatHandler) ChatExists(c *gin.Context) {
	exists, err := h.chatUsecase.ChatExists(c.Request.Context(), c.Param("rideId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// GetChats lists the caller's chats, most recent activity first
// GET /api/chats
func (h *ChatHandler) GetChats(c *gin.Context) {
	chats, err := h.chatUsecase.ListUserChats(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}
