package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-ordering/services"
	"github.com/yeremiapane/table-ordering/utils"
)

type WaiterCallController struct {
	Calls *services.WaiterCallService
}

func NewWaiterCallController(calls *services.WaiterCallService) *WaiterCallController {
	return &WaiterCallController{Calls: calls}
}

// CallWaiter replaces the table's pending call with a fresh one.
func (wc *WaiterCallController) CallWaiter(c *gin.Context) {
	call, err := wc.Calls.Call(c.Request.Context(), actorFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Waiter called", call)
}

func (wc *WaiterCallController) GetPendingCalls(c *gin.Context) {
	calls, err := wc.Calls.Pending(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pending waiter calls", calls)
}

func (wc *WaiterCallController) ResolveCall(c *gin.Context) {
	if err := wc.Calls.Resolve(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Waiter call resolved", nil)
}
