package middleware

import (
	"net/http"

	"github.com/bazaarpanel/bazaar/database/model"
	"github.com/bazaarpanel/bazaar/web/session"

	"github.com/gin-gonic/gin"
)

// RoleRequired blocks requests whose identity does not carry one of the
// allowed roles. The role comes from the server-side session or from claims
// already verified by the login gate, never from anything else the client sent.
func RoleRequired(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]bool)
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		identity := session.GetLoginIdentity(c)
		if identity == nil {
			if obj, ok := c.Get("tokenIdentity"); ok {
				identity, _ = obj.(*model.Identity)
			}
		}
		if identity == nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if !allowed[identity.Role] {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
