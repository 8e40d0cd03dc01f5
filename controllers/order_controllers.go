package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/services"
	"github.com/yeremiapane/table-ordering/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// CreateOrder places the cart of the authenticated table.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var input services.PlaceOrderInput
	if err := utils.BindJSON(c, &input); err != nil {
		utils.RespondError(c, err)
		return
	}

	order, err := oc.Orders.PlaceOrder(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetMyOrders lists the table's own visible orders.
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	orders, err := oc.Orders.ListForUser(c.Request.Context(), actorFrom(c).UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetAllOrders is the kitchen listing of every visible order.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := oc.Orders.ListActive(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	order, err := oc.Orders.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// Transition returns the handler applying action to the order in the path.
func (oc *OrderController) Transition(action models.OrderAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := oc.Orders.Transition(c.Request.Context(), actorFrom(c), c.Param("id"), action)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Order "+string(order.Status), order)
	}
}

func (oc *OrderController) HideOrder(c *gin.Context) {
	if err := oc.Orders.Hide(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order hidden", nil)
}

// HideTableOrders clears the finished orders of one table from the dashboards.
func (oc *OrderController) HideTableOrders(c *gin.Context) {
	n, err := oc.Orders.HideTerminalForTable(c.Request.Context(), c.Param("table"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders hidden", gin.H{"hidden": n})
}
