package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"github.com/yeremiapane/table-ordering/services"
	"github.com/yeremiapane/table-ordering/utils"
)

const qrSize = 512

type TableController struct {
	Auth          *services.AuthService
	Sessions      *services.SessionService
	PublicBaseURL string
}

func NewTableController(auth *services.AuthService, sessions *services.SessionService, publicBaseURL string) *TableController {
	return &TableController{Auth: auth, Sessions: sessions, PublicBaseURL: publicBaseURL}
}

// GetAllTables lists every table with its occupancy flag.
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Sessions.Tables(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) GetSessions(c *gin.Context) {
	sessions, err := tc.Sessions.List(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active sessions", sessions)
}

// ReserveTable marks a table occupied without a customer login.
func (tc *TableController) ReserveTable(c *gin.Context) {
	session, err := tc.Sessions.Reserve(c.Request.Context(), c.Param("table"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.InfoLogger.Printf("Table %s reserved by %s", session.Username, actorFrom(c).Username)
	utils.RespondJSON(c, http.StatusOK, "Table reserved", session)
}

// ReleaseTable ends the table's session.
func (tc *TableController) ReleaseTable(c *gin.Context) {
	if err := tc.Sessions.EndSession(c.Request.Context(), c.Param("table")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table released", nil)
}

// LoginURL is the address encoded in a table's QR code.
func (tc *TableController) LoginURL(slug string) string {
	return fmt.Sprintf("%s/login/%s", tc.PublicBaseURL, slug)
}

// GetTableQR renders the table's QR login link as a PNG.
func (tc *TableController) GetTableQR(c *gin.Context) {
	table, err := tc.Auth.FindTableByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	png, err := qrcode.Encode(tc.LoginURL(table.Slug), qrcode.Medium, qrSize)
	if err != nil {
		utils.RespondError(c, utils.NewStorageError(err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", "mesa-"+table.Username+".png"))
	c.Data(http.StatusOK, "image/png", png)
}
