package delivery

import (
	"net/http"
	"strings"

	authdomain "roadbuddy-backend/internal/auth/domain"
	"roadbuddy-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

const (
	userKey   = "user"
	userIDKey = "userID"
)

func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		identity, err := authUsecase.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(userKey, identity)
		c.Set(userIDKey, identity.UID)
		c.Next()
	}
}

// CurrentUser returns the identity stored by AuthMiddleware.
func CurrentUser(c *gin.Context) *authdomain.Identity {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*authdomain.Identity)
	return identity
}

// SetCurrentUser stores identity on the context; handler tests use it to
// bypass token verification.
func SetCurrentUser(c *gin.Context, identity *authdomain.Identity) {
	c.Set(userKey, identity)
	c.Set(userIDKey, identity.UID)
}
