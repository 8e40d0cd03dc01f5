package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-ordering/config"
	"github.com/yeremiapane/table-ordering/controllers"
	"github.com/yeremiapane/table-ordering/kds"
	"github.com/yeremiapane/table-ordering/middlewares"
	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/services"
	"github.com/yeremiapane/table-ordering/utils"
	"gorm.io/gorm"
)

// SetupRouter wires every endpoint. authLimiter throttles the public auth
// endpoints; nil selects the strict default.
func SetupRouter(db *gorm.DB, cfg *config.Config, cache services.Cache, hub *kds.Hub, authLimiter *middlewares.RateLimiter) *gin.Engine {
	utils.RegisterValidators()
	if authLimiter == nil {
		authLimiter = middlewares.NewStrictRateLimiter()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		utils.ErrorLogger.Errorf("Panic on %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, utils.JSONResponse{Success: false, Error: "Server error"})
	}))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())

	r.NoMethod(controllers.MethodNotAllowed)
	r.NoRoute(func(c *gin.Context) {
		utils.RespondError(c, utils.ErrNotFound)
	})

	// Services
	authSvc := services.NewAuthService(db)
	sessionSvc := services.NewSessionService(db, cache)
	orderSvc := services.NewOrderService(db)
	callSvc := services.NewWaiterCallService(db)
	menuSvc := services.NewMenuService(db, cache)
	userSvc := services.NewUserService(db, cache)
	reportSvc := services.NewReportService(db)

	// Controllers
	userCtrl := controllers.NewUserController(authSvc, sessionSvc)
	adminCtrl := controllers.NewAdminController(authSvc, userSvc, orderSvc, reportSvc)
	orderCtrl := controllers.NewOrderController(orderSvc)
	callCtrl := controllers.NewWaiterCallController(callSvc)
	menuCtrl := controllers.NewMenuController(menuSvc)
	categoryCtrl := controllers.NewMenuCategoryController(menuSvc)
	tableCtrl := controllers.NewTableController(authSvc, sessionSvc, cfg.PublicBaseURL)
	kdsCtrl := controllers.NewKDSController(hub, cfg.CORSOrigin)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := r.Group("/api")

	public := api.Group("/auth")
	public.Use(authLimiter.RateLimit())
	{
		public.POST("/login", userCtrl.Login)
		public.POST("/table-login", userCtrl.TableLogin)
		public.POST("/slug-login", userCtrl.SlugLogin)
		public.POST("/register", userCtrl.Register)
		public.POST("/request-registration", userCtrl.RequestRegistration)
	}

	api.GET("/menu", menuCtrl.GetActiveMenu)
	api.GET("/menu/categories", categoryCtrl.GetActiveCategories)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	authed := api.Group("")
	authed.Use(middlewares.AuthMiddleware())

	authed.POST("/auth/logout", userCtrl.Logout)

	// ORDERS
	orders := authed.Group("/orders")
	{
		orders.POST("", middlewares.CustomerOnly(), orderCtrl.CreateOrder)
		orders.GET("/mine", middlewares.CustomerOnly(), orderCtrl.GetMyOrders)
		orders.GET("", middlewares.StaffOnly(), orderCtrl.GetAllOrders)
		orders.GET("/:id", orderCtrl.GetOrderByID)
		orders.POST("/:id/cancel", orderCtrl.Transition(models.ActionCancel))
		orders.POST("/:id/hide", orderCtrl.HideOrder)
		orders.POST("/:id/accept", middlewares.StaffOnly(), orderCtrl.Transition(models.ActionAccept))
		orders.POST("/:id/ready", middlewares.StaffOnly(), orderCtrl.Transition(models.ActionReady))
		orders.POST("/:id/complete", middlewares.StaffOnly(), orderCtrl.Transition(models.ActionComplete))
	}

	// WAITER CALLS
	authed.POST("/waiter-calls", middlewares.CustomerOnly(), callCtrl.CallWaiter)
	authed.GET("/waiter-calls", middlewares.StaffOnly(), callCtrl.GetPendingCalls)
	authed.POST("/waiter-calls/:id/resolve", middlewares.StaffOnly(), callCtrl.ResolveCall)

	// TABLES (employee/admin)
	staff := authed.Group("")
	staff.Use(middlewares.StaffOnly())
	{
		staff.GET("/tables", tableCtrl.GetAllTables)
		staff.GET("/sessions", tableCtrl.GetSessions)
		staff.POST("/tables/:table/reserve", tableCtrl.ReserveTable)
		staff.DELETE("/tables/:table/session", tableCtrl.ReleaseTable)
		staff.POST("/tables/:table/hide-orders", orderCtrl.HideTableOrders)
	}

	// ADMIN
	admin := authed.Group("/admin")
	admin.Use(middlewares.AdminOnly())
	{
		admin.POST("/create-user", adminCtrl.CreateUser)
		admin.GET("/users", adminCtrl.ListUsers)
		admin.POST("/users/:id/toggle-admin", adminCtrl.ToggleAdmin)
		admin.DELETE("/users/:id", adminCtrl.DeleteUser)

		admin.GET("/registrations", adminCtrl.Registrations)
		admin.POST("/registrations/:id/approve", adminCtrl.ApproveRegistration)
		admin.DELETE("/registrations/:id", adminCtrl.RejectRegistration)

		admin.GET("/orders", adminCtrl.AllOrders)
		admin.GET("/performance", adminCtrl.Performance)
		admin.GET("/performance/:id/orders", adminCtrl.EmployeeOrders)
		admin.GET("/reports/daily", adminCtrl.DailyReport)
		admin.GET("/reports/daily.pdf", adminCtrl.DailyReportPDF)
		admin.DELETE("/data", adminCtrl.ClearData)

		admin.GET("/menu", menuCtrl.GetAllMenus)
		admin.POST("/menu", menuCtrl.CreateMenu)
		admin.PUT("/menu/:id", menuCtrl.UpdateMenu)
		admin.DELETE("/menu/:id", menuCtrl.DeleteMenu)
		admin.PATCH("/menu/:id/toggle", menuCtrl.ToggleMenu)

		admin.GET("/categories", categoryCtrl.GetAllCategories)
		admin.PUT("/categories/order", categoryCtrl.SaveOrder)

		admin.GET("/tables/:id/qr", tableCtrl.GetTableQR)
	}

	// WebSocket push feed
	r.GET("/ws", middlewares.WebSocketAuthMiddleware(), kdsCtrl.KDSHandler)

	return r
}
