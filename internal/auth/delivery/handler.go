package delivery

import (
	"net/http"

	authdto "roadbuddy-backend/internal/auth/dto"
	"roadbuddy-backend/internal/auth/usecase"
	"roadbuddy-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
}

func NewAuthHandler(authUsecase usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase}
}

// Signup creates an account
// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req authdto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.authUsecase.Signup(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Verify checks a token and returns the identity behind it
// POST /api/auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	var req authdto.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	identity, err := h.authUsecase.ValidateToken(c.Request.Context(), req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}
	c.JSON(http.StatusOK, identity)
}

// Me returns the caller's profile
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	identity := CurrentUser(c)
	user, err := h.authUsecase.GetUser(c.Request.Context(), identity.UID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, authdto.NewUserResponse(user))
}

// UserID returns the caller's ID
// GET /api/users/me/id
func (h *AuthHandler) UserID(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(userIDKey)})
}

// Logout is stateless; tokens are discarded client-side
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
