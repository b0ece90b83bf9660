package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/docket/internal/domain"
)

const (
	headerActorID       = "X-Actor-ID"
	headerActorRole     = "X-Actor-Role"
	headerActorLocation = "X-Actor-Location"

	actorKey = "docket.actor"
)

var knownRoles = map[domain.ActorRole]bool{
	domain.RoleAdmin:    true,
	domain.RoleReviewer: true,
	domain.RoleManager:  true,
	domain.RoleEmployee: true,
}

// requireActor reads the caller's identity from headers. A missing role
// means employee, the least privileged one.
func requireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerActorID))
		if id == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": headerActorID + " header is required"})
			return
		}
		role := domain.ActorRole(strings.ToLower(strings.TrimSpace(c.GetHeader(headerActorRole))))
		if role == "" {
			role = domain.RoleEmployee
		}
		if !knownRoles[role] {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown actor role " + string(role)})
			return
		}
		c.Set(actorKey, domain.Actor{
			ID:       id,
			Role:     role,
			Location: strings.TrimSpace(c.GetHeader(headerActorLocation)),
		})
		c.Next()
	}
}

func actorOf(c *gin.Context) domain.Actor {
	a, _ := c.Get(actorKey)
	actor, _ := a.(domain.Actor)
	return actor
}
