package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
	"github.com/GG-Muniz/FlavorLab-sub000/services"
	"github.com/GG-Muniz/FlavorLab-sub000/utils"
)

type CalorieController struct {
	Ledger *services.LedgerService
}

func NewCalorieController(ls *services.LedgerService) *CalorieController {
	return &CalorieController{Ledger: ls}
}

// GET /calorie/summary[?target_date=YYYY-MM-DD]
func (cc *CalorieController) Summary(c *gin.Context) {
	day, err := utils.ParseDay(c.Query("target_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := cc.Ledger.Summary(c.Request.Context(), c.GetUint("userID"), day)
	if err != nil {
		respondError(c, "Summary", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// PUT /calorie/goal
func (cc *CalorieController) SetGoal(c *gin.Context) {
	var req ledger.SetGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := cc.Ledger.SetGoal(c.Request.Context(), c.GetUint("userID"), req.GoalCalories)
	if err != nil {
		respondError(c, "SetGoal", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /calorie/history?from=YYYY-MM-DD&to=YYYY-MM-DD
func (cc *CalorieController) History(c *gin.Context) {
	if c.Query("from") == "" || c.Query("to") == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}
	from, err := utils.ParseDay(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := utils.ParseDay(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := cc.Ledger.History(c.Request.Context(), c.GetUint("userID"), from, to)
	if err != nil {
		respondError(c, "History", err)
		return
	}
	c.JSON(http.StatusOK, out)
}
