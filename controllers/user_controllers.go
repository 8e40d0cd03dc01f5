package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/services"
	"github.com/yeremiapane/table-ordering/utils"
)

// UserController serves the public authentication endpoints.
type UserController struct {
	Auth     *services.AuthService
	Sessions *services.SessionService
}

func NewUserController(auth *services.AuthService, sessions *services.SessionService) *UserController {
	return &UserController{Auth: auth, Sessions: sessions}
}

type loginResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
}

func (uc *UserController) respondLogin(c *gin.Context, user *models.User) {
	token, err := utils.GenerateToken(user.ID, user.Username, string(user.Role()))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{Success: true, User: user, Token: token})
}

// Login authenticates staff. isEmployee=false logs in as admin.
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Username   string `json:"username" binding:"required"`
		Password   string `json:"password" binding:"required"`
		IsEmployee bool   `json:"isEmployee"`
	}
	if err := utils.BindJSON(c, &input); err != nil {
		utils.RespondError(c, err)
		return
	}

	role := models.RoleAdmin
	if input.IsEmployee {
		role = models.RoleEmployee
	}
	user, err := uc.Auth.VerifyCredentials(c.Request.Context(), strings.TrimSpace(input.Username), input.Password, role)
	if err != nil {
		utils.InfoLogger.Printf("Failed %s login for %q from %s", role, input.Username, c.ClientIP())
		utils.RespondError(c, err)
		return
	}

	utils.InfoLogger.Printf("Login successful for %s (role=%s)", user.Username, role)
	uc.respondLogin(c, user)
}

// TableLogin logs a customer in by table number. The password is only
// checked when one is sent.
func (uc *UserController) TableLogin(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password"`
	}
	if err := utils.BindJSON(c, &input); err != nil {
		utils.RespondError(c, err)
		return
	}

	ctx := c.Request.Context()
	username := strings.TrimSpace(input.Username)
	var (
		user *models.User
		err  error
	)
	if input.Password != "" {
		user, err = uc.Auth.VerifyCredentials(ctx, username, input.Password, models.RoleCustomer)
	} else {
		user, err = uc.Auth.FindTable(ctx, username)
	}
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	uc.startAndRespond(c, user)
}

// SlugLogin logs a table in from its QR code.
func (uc *UserController) SlugLogin(c *gin.Context) {
	var input struct {
		Slug string `json:"slug" binding:"required"`
	}
	if err := utils.BindJSON(c, &input); err != nil {
		utils.RespondError(c, err)
		return
	}

	user, err := uc.Auth.FindBySlug(c.Request.Context(), strings.TrimSpace(input.Slug))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	uc.startAndRespond(c, user)
}

func (uc *UserController) startAndRespond(c *gin.Context, user *models.User) {
	if _, err := uc.Sessions.StartSession(c.Request.Context(), user); err != nil {
		utils.RespondError(c, err)
		return
	}
	uc.respondLogin(c, user)
}

// Register creates a table account after re-authenticating an admin from the
// same request body.
func (uc *UserController) Register(c *gin.Context) {
	var input struct {
		Username      string `json:"username" binding:"required,max=50"`
		Phone         string `json:"phone" binding:"max=20"`
		Password      string `json:"password" binding:"required"`
		AdminUsername string `json:"adminUsername" binding:"required"`
		AdminPassword string `json:"adminPassword" binding:"required"`
	}
	if err := utils.BindJSON(c, &input); err != nil {
		utils.RespondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := uc.Auth.VerifyCredentials(ctx, input.AdminUsername, input.AdminPassword, models.RoleAdmin); err != nil {
		utils.RespondError(c, err)
		return
	}

	user, err := uc.Auth.CreateUser(ctx, services.NewUser{
		Username: input.Username,
		Phone:    input.Phone,
		Password: input.Password,
		Role:     models.RoleCustomer,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User registered", user)
}

// RequestRegistration stores a pending staff account for admin approval.
func (uc *UserController) RequestRegistration(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required,max=50"`
		Phone    string `json:"phone" binding:"required,digits,min=10,max=20"`
		Password string `json:"password" binding:"required,strongpassword"`
		UserType string `json:"userType" binding:"required,oneof=employee admin"`
	}
	if err := utils.BindJSON(c, &input); err != nil {
		utils.RespondError(c, err)
		return
	}

	user, err := uc.Auth.CreateUser(c.Request.Context(), services.NewUser{
		Username:       input.Username,
		Phone:          input.Phone,
		Password:       input.Password,
		Role:           models.Role(input.UserType),
		ApprovalStatus: models.ApprovalPending,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Registration requested", gin.H{"id": user.ID})
}

// Logout revokes the bearer token. A table's session stays active until an
// employee releases it.
func (uc *UserController) Logout(c *gin.Context) {
	token, exp := tokenFrom(c)
	utils.BlacklistToken(token, exp)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

// MethodNotAllowed answers non-POST requests on the auth endpoints.
func MethodNotAllowed(c *gin.Context) {
	utils.RespondError(c, utils.ErrMethodNotAllowed)
}
