package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vostra/vostra-backend/internal/errors"
	"github.com/vostra/vostra-backend/pkg/util"
)

// Context keys for request identity
const (
	AccountIDKey   = "account_id"
	AccountRoleKey = "account_role"
)

// SessionTokenHeader carries the anonymous session token. Pre-authentication
// shoppers identify their cart with it; after login it is only read by the
// migration endpoint to locate the source cart.
const SessionTokenHeader = "X-Session-Token"

type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
	}
}

// Authenticate validates the account JWT (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "invalid authorization header")
			c.Abort()
			return
		}

		claims, err := util.ValidateToken(parts[1], m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			if err == util.ErrExpiredToken {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "session has expired, please log in again")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "invalid authentication token")
			}
			c.Abort()
			return
		}

		c.Set(AccountIDKey, claims.AccountID)
		c.Set(AccountRoleKey, claims.Role)

		log.Debug("Account authenticated successfully", map[string]interface{}{
			"account_id": claims.AccountID,
			"role":       claims.Role,
		})

		c.Next()
	}
}

// OptionalAuthenticate validates the account JWT if present.
// - Valid token: account identity lands in the context.
// - Missing or invalid token: the request continues as an anonymous shopper
//   identified by its session token, if any.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Debug("Invalid authorization header format - continuing as guest", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			c.Next()
			return
		}

		claims, err := util.ValidateToken(parts[1], m.jwtSecret)
		if err != nil {
			log.Debug("Token validation failed - continuing as guest", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			c.Next()
			return
		}

		c.Set(AccountIDKey, claims.AccountID)
		c.Set(AccountRoleKey, claims.Role)

		log.Debug("Account authenticated successfully (optional)", map[string]interface{}{
			"account_id": claims.AccountID,
			"role":       claims.Role,
		})

		c.Next()
	}
}

// RequireRole checks if the account has one of the required roles
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		accountRole, exists := c.Get(AccountRoleKey)
		if !exists {
			log.Warn("Role information not found in context", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzRoleNotFound, "role information not found")
			c.Abort()
			return
		}

		role := accountRole.(string)
		accountID, _ := GetAccountID(c)

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		log.Warn("Insufficient permissions", map[string]interface{}{
			"account_id":     accountID,
			"account_role":   role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		errors.Forbidden(c, "access denied")
		c.Abort()
	}
}

// GetAccountID extracts the authenticated account id from context
func GetAccountID(c *gin.Context) (uint, bool) {
	accountID, exists := c.Get(AccountIDKey)
	if !exists {
		return 0, false
	}
	return accountID.(uint), true
}

// GetSessionToken extracts the anonymous session token from the request
func GetSessionToken(c *gin.Context) string {
	return c.GetHeader(SessionTokenHeader)
}
