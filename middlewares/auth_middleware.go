package middlewares

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/utils"
)

// Context keys set by the auth middlewares.
const (
	CtxUserID   = "userID"
	CtxUsername = "username"
	CtxRole     = "role"
	CtxToken    = "token"
	CtxTokenExp = "tokenExp"
)

// AuthMiddleware requires a valid "Authorization: Bearer <jwt>" header.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, utils.ErrUnauthorized)
			return
		}
		authenticate(c, strings.TrimPrefix(authHeader, "Bearer "))
	}
}

func authenticate(c *gin.Context, tokenString string) {
	claims, err := utils.ParseToken(tokenString)
	if err != nil || claims == nil || claims.UserID == "" {
		utils.RespondError(c, utils.ErrUnauthorized)
		return
	}

	role := models.Role(claims.Role)
	if !role.Valid() {
		utils.RespondError(c, utils.ErrUnauthorized)
		return
	}

	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxUsername, claims.Username)
	c.Set(CtxRole, role)
	c.Set(CtxToken, tokenString)
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	c.Set(CtxTokenExp, exp)

	c.Next()
}

// CurrentRole returns the authenticated role, or "" before authentication.
func CurrentRole(c *gin.Context) models.Role {
	if v, ok := c.Get(CtxRole); ok {
		if r, ok := v.(models.Role); ok {
			return r
		}
	}
	return ""
}
