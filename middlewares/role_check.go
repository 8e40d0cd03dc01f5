package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/utils"
)

// RequireRole lets the request through when the caller has one of roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := CurrentRole(c)
		if current == "" {
			utils.RespondError(c, utils.ErrUnauthorized)
			return
		}
		for _, r := range roles {
			if current == r {
				c.Next()
				return
			}
		}
		utils.RespondError(c, utils.ErrForbidden)
	}
}

func StaffOnly() gin.HandlerFunc {
	return RequireRole(models.RoleEmployee, models.RoleAdmin)
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

func CustomerOnly() gin.HandlerFunc {
	return RequireRole(models.RoleCustomer)
}
