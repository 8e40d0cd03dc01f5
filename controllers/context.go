package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-ordering/middlewares"
	"github.com/yeremiapane/table-ordering/services"
)

// actorFrom builds the service actor from the values set by AuthMiddleware.
func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		UserID:   c.GetString(middlewares.CtxUserID),
		Username: c.GetString(middlewares.CtxUsername),
		Role:     middlewares.CurrentRole(c),
	}
}

func tokenFrom(c *gin.Context) (string, time.Time) {
	return c.GetString(middlewares.CtxToken), c.GetTime(middlewares.CtxTokenExp)
}
