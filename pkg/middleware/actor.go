package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderActorID carries the pre-authenticated id of the calling user.
const HeaderActorID = "X-Sharer-User-Id"

const ctxActorID = "actor_id"

// ActorMiddleware requires a valid actor id header and stores it on the context.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderActorID)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "VALIDATION_ERROR", "message": "missing " + HeaderActorID + " header"},
			})
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "VALIDATION_ERROR", "message": "invalid " + HeaderActorID + " header"},
			})
			return
		}
		c.Set(ctxActorID, id)
		c.Next()
	}
}

// GetUserID returns the actor id stored by ActorMiddleware.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxActorID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
