package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
	"github.com/GG-Muniz/FlavorLab-sub000/services"
)

type MealPlanController struct {
	Plans *services.MealPlanService
}

func NewMealPlanController(ps *services.MealPlanService) *MealPlanController {
	return &MealPlanController{Plans: ps}
}

// POST /users/me/meal-plan. The body is optional.
func (pc *MealPlanController) Generate(c *gin.Context) {
	var req ledger.MealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := pc.Plans.Generate(c.Request.Context(), c.GetUint("userID"), req)
	if err != nil {
		respondError(c, "GenerateMealPlan", err)
		return
	}
	c.JSON(http.StatusOK, out)
}
