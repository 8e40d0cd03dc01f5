package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/table-ordering/kds"
	"github.com/yeremiapane/table-ordering/middlewares"
	"github.com/yeremiapane/table-ordering/utils"
)

type KDSController struct {
	Hub      *kds.Hub
	upgrader websocket.Upgrader
}

// NewKDSController accepts handshakes from the comma separated origins, or
// from any origin when allowed is "*".
func NewKDSController(hub *kds.Hub, allowed string) *KDSController {
	origins := make(map[string]bool)
	for _, o := range strings.Split(allowed, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = true
		}
	}
	return &KDSController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
	}
}

// KDSHandler upgrades to the push feed. Staff receive every feed; tables
// receive the menu and their own orders.
func (kc *KDSController) KDSHandler(c *gin.Context) {
	role := middlewares.CurrentRole(c)
	userID := c.GetString(middlewares.CtxUserID)

	ws, err := kc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Warnf("Websocket upgrade failed: %v", err)
		return
	}

	kc.Hub.Register(ws, role, userID)
	utils.InfoLogger.Printf("Feed client connected (role=%s, clients=%d)", role, kc.Hub.Count())

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	kc.Hub.Unregister(ws)
}
