package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vostra/vostra-backend/internal/middleware"
	"github.com/vostra/vostra-backend/pkg/redis"
)

type SessionController struct {
	sessionTTL time.Duration
}

func NewSessionController(sessionTTL time.Duration) *SessionController {
	return &SessionController{
		sessionTTL: sessionTTL,
	}
}

// CreateSession issues an anonymous session token for a guest shopper. The
// client sends it back in the X-Session-Token header on every cart call.
// Registration in Redis is best effort; the cart works without Redis, only
// idle-session cleanup loses precision.
// POST /api/v1/session
func (ctrl *SessionController) CreateSession(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	token := uuid.NewString()

	if err := redis.RegisterSession(c.Request.Context(), token, ctrl.sessionTTL); err != nil {
		log.Warn("Failed to register session in Redis", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Guest session issued", nil)

	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"session_token": token,
	})
}
