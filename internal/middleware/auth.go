package middleware

import (
	"net/http"
	"strings"

	userRepo "anoa.com/softdesk/internal/modules/user/repository"
	"anoa.com/softdesk/pkg/logger"
	"anoa.com/softdesk/pkg/response"
	"anoa.com/softdesk/pkg/token"
	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	tokens       userRepo.TokenRepository
	tokenManager *token.Manager
}

func NewAuthMiddleware(tokens userRepo.TokenRepository, tokenManager *token.Manager) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:       tokens,
		tokenManager: tokenManager,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		claims, err := m.tokenManager.Parse(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		revoked, err := m.tokens.IsRevoked(c.Request.Context(), claims.TokenID)
		if err != nil {
			logger.Log.WithField("token_id", claims.TokenID).Errorf("failed to check token revocation: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			c.Abort()
			return
		}
		if revoked {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token has been revoked"})
			c.Abort()
			return
		}

		c.Set(response.ContextUserID, claims.UserID)
		c.Set(response.ContextTokenID, claims.TokenID)
		c.Set(response.ContextTokenExp, claims.ExpiresAt)
		c.Next()
	}
}
