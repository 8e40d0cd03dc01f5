package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/services"
	"github.com/yeremiapane/table-ordering/utils"
)

type AdminController struct {
	Auth    *services.AuthService
	Users   *services.UserService
	Orders  *services.OrderService
	Reports *services.ReportService
}

func NewAdminController(auth *services.AuthService, users *services.UserService, orders *services.OrderService, reports *services.ReportService) *AdminController {
	return &AdminController{Auth: auth, Users: users, Orders: orders, Reports: reports}
}

// CreateUser adds an approved account with the requested role flags.
func (ac *AdminController) CreateUser(c *gin.Context) {
	var input struct {
		Username   string `json:"username" binding:"required,max=50"`
		Phone      string `json:"phone" binding:"max=20"`
		Password   string `json:"password" binding:"required"`
		IsAdmin    bool   `json:"is_admin"`
		IsEmployee bool   `json:"is_employee"`
	}
	if err := utils.BindJSON(c, &input); err != nil {
		utils.RespondError(c, err)
		return
	}

	user, err := ac.Auth.CreateUser(c.Request.Context(), services.NewUser{
		Username:       input.Username,
		Phone:          input.Phone,
		Password:       input.Password,
		Role:           models.RoleFromFlags(input.IsAdmin, input.IsEmployee),
		ApprovalStatus: models.ApprovalApproved,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User created", user)
}

func (ac *AdminController) ListUsers(c *gin.Context) {
	users, err := ac.Users.Approved(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Users", users)
}

func (ac *AdminController) ToggleAdmin(c *gin.Context) {
	user, err := ac.Users.ToggleAdmin(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User role updated", user)
}

func (ac *AdminController) DeleteUser(c *gin.Context) {
	if err := ac.Users.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User deleted", nil)
}

// Registrations lists pending staff requests, oldest first.
func (ac *AdminController) Registrations(c *gin.Context) {
	pending, err := ac.Users.PendingRegistrations(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pending registrations", pending)
}

func (ac *AdminController) ApproveRegistration(c *gin.Context) {
	if err := ac.Users.Approve(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Registration approved", nil)
}

func (ac *AdminController) RejectRegistration(c *gin.Context) {
	if err := ac.Users.Reject(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Registration rejected", nil)
}

func (ac *AdminController) AllOrders(c *gin.Context) {
	orders, err := ac.Orders.ListActive(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders", orders)
}

func (ac *AdminController) Performance(c *gin.Context) {
	perf, err := ac.Reports.Performance(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Employee performance", perf)
}

// EmployeeOrders lists ?status=completed|cancelled orders handled by one employee.
func (ac *AdminController) EmployeeOrders(c *gin.Context) {
	status := models.OrderStatus(c.DefaultQuery("status", string(models.StatusCompleted)))
	orders, err := ac.Reports.EmployeeOrders(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Employee orders", orders)
}

func (ac *AdminController) DailyReport(c *gin.Context) {
	report, err := ac.Reports.Today(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Daily report", report)
}

func (ac *AdminController) DailyReportPDF(c *gin.Context) {
	report, err := ac.Reports.Today(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := services.WriteDailyReportPDF(&buf, report, time.Now()); err != nil {
		utils.RespondError(c, utils.NewStorageError(err))
		return
	}

	filename := fmt.Sprintf("relatorio-%s.pdf", report.Date)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// ClearData deletes every order, order item and waiter call.
func (ac *AdminController) ClearData(c *gin.Context) {
	if err := ac.Orders.ClearAll(c.Request.Context()); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.InfoLogger.Printf("Order data cleared by %s", actorFrom(c).Username)
	utils.RespondJSON(c, http.StatusOK, "All orders cleared", nil)
}
