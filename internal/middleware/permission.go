package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskmanager-api/internal/authz"
	apierrors "github.com/yukikurage/taskmanager-api/internal/errors"
)

// RequirePermission rejects requests whose method maps to an operation the
// actor may not perform on view. Methods with no mapped operation pass
// through.
func RequirePermission(gate *authz.Gate, view authz.View) gin.HandlerFunc {
	return func(c *gin.Context) {
		op, ok := authz.OperationForMethod(c.Request.Method)
		if !ok {
			c.Next()
			return
		}

		if err := gate.Authorize(GetActor(c), view, op); err != nil {
			apierrors.Respond(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
