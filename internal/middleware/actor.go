package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/memberguard/block-registry/internal/service"
)

const (
	// HeaderActorID carries the id of the member the host is acting for.
	HeaderActorID = "X-Actor-ID"
	// HeaderActorCanModerate is "true" when the host has granted that member moderation rights.
	HeaderActorCanModerate = "X-Actor-Can-Moderate"

	actorKey = "actor"
)

// Actor reads the acting member from request headers into the gin context.
// A missing or malformed id yields an actor with id 0 and no rights.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := service.Actor{}

		if id, err := strconv.ParseInt(strings.TrimSpace(c.GetHeader(HeaderActorID)), 10, 64); err == nil && id > 0 {
			actor.ID = id
			actor.CanModerate, _ = strconv.ParseBool(c.GetHeader(HeaderActorCanModerate))
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// ActorFrom returns the actor stored by Actor.
func ActorFrom(c *gin.Context) service.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(service.Actor); ok {
			return actor
		}
	}
	return service.Actor{}
}
