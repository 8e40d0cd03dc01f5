package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-ordering/services"
	"github.com/yeremiapane/table-ordering/utils"
)

type MenuCategoryController struct {
	Menu *services.MenuService
}

func NewMenuCategoryController(menu *services.MenuService) *MenuCategoryController {
	return &MenuCategoryController{Menu: menu}
}

// GetActiveCategories lists the categories of the active menu in display order.
func (mcc *MenuCategoryController) GetActiveCategories(c *gin.Context) {
	categories, err := mcc.Menu.Categories(c.Request.Context(), true, false)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All menu categories", categories)
}

// GetAllCategories is the admin view; categories without a position are
// saved at the end.
func (mcc *MenuCategoryController) GetAllCategories(c *gin.Context) {
	categories, err := mcc.Menu.Categories(c.Request.Context(), false, true)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All menu categories", categories)
}

func (mcc *MenuCategoryController) SaveOrder(c *gin.Context) {
	var body struct {
		Categories []string `json:"categories" binding:"required,min=1"`
	}
	if err := utils.BindJSON(c, &body); err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := mcc.Menu.SaveCategoryOrder(c.Request.Context(), body.Categories); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category order saved", body.Categories)
}
