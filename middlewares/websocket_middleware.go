package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-ordering/utils"
)

// WebSocketAuthMiddleware reads the token from the query string, since
// browsers cannot set headers on a websocket handshake.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			utils.RespondError(c, utils.ErrUnauthorized)
			return
		}
		authenticate(c, token)
	}
}
