package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"trosc-backend/internal/config"
	"trosc-backend/internal/logger"
	"trosc-backend/internal/user/model"
	appErrors "trosc-backend/pkg/errors"
	"trosc-backend/pkg/utils"
)

const (
	ContextUserIDKey = "userID"
	ContextEmailKey  = "email"
	ContextRoleKey   = "role"

	jwtCookieName = "jwt"
)

// UserLoader fetches the account a verified token belongs to.
type UserLoader interface {
	GetByID(ctx context.Context, userID primitive.ObjectID) (*model.User, error)
}

// AuthMiddleware verifies the bearer token (header or cookie), loads the
// user and rejects tokens issued before the user's last password change.
func AuthMiddleware(cfg *config.Config, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "You are not logged in")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(token, cfg.JWT.Secret)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			// A missing user means the token is orphaned; anything else is
			// a store fault and must not masquerade as an auth failure.
			if errors.Is(err, appErrors.ErrUserNotFound) {
				utils.ErrorResponse(c, http.StatusUnauthorized, "The user belonging to this token no longer exists")
			} else {
				logger.Error("Failed to load user for token",
					zap.String("request_id", GetRequestID(c)),
					zap.Error(err),
				)
				utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
			}
			c.Abort()
			return
		}
		if !user.Active {
			utils.ErrorResponse(c, http.StatusUnauthorized, "The user belonging to this token no longer exists")
			c.Abort()
			return
		}

		// A token minted before the last credential change still has a valid
		// signature but must not be accepted.
		if claims.IssuedAt != nil && user.ChangedPasswordAfter(claims.IssuedAt.Time) {
			utils.ErrorResponse(c, http.StatusUnauthorized, "User recently changed password, please log in again")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextEmailKey, user.Email)
		c.Set(ContextRoleKey, user.Role)

		c.Next()
	}
}

// extractToken prefers the Authorization header but falls back to the jwt
// cookie, including when the header is present yet not a Bearer scheme.
func extractToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	if cookie, err := c.Cookie(jwtCookieName); err == nil && cookie != "loggedout" {
		return cookie
	}
	return ""
}
