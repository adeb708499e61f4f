package server

import (
	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/dinepos/internal/audit/domain"
)

// OperatorActor marks every change made through the API as an operator action
// in the audit log. Startup jobs keep the default system actor.
func OperatorActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := auditdomain.WithActorType(c.Request.Context(), auditdomain.ActorTypeOperator)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
