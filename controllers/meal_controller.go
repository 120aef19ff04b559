package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
	"github.com/GG-Muniz/FlavorLab-sub000/services"
	"github.com/GG-Muniz/FlavorLab-sub000/utils"
)

type MealController struct {
	Ledger *services.LedgerService
}

func NewMealController(ls *services.LedgerService) *MealController {
	return &MealController{Ledger: ls}
}

// GET /meals?source=generated|logged[&date=YYYY-MM-DD]
func (mc *MealController) List(c *gin.Context) {
	uid := c.GetUint("userID")

	switch ledger.Source(c.DefaultQuery("source", string(ledger.SourceLogged))) {
	case ledger.SourceGenerated:
		out, err := mc.Ledger.ListTemplates(c.Request.Context(), uid)
		if err != nil {
			respondError(c, "ListTemplates", err)
			return
		}
		c.JSON(http.StatusOK, out)
	case ledger.SourceLogged:
		var day *time.Time
		if s := c.Query("date"); s != "" {
			d, err := utils.ParseDay(s)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			day = &d
		}
		out, err := mc.Ledger.ListLogged(c.Request.Context(), uid, day)
		if err != nil {
			respondError(c, "ListLogged", err)
			return
		}
		c.JSON(http.StatusOK, out)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "source must be generated or logged"})
	}
}

// POST /meals/log-manual
func (mc *MealController) LogManual(c *gin.Context) {
	var req ledger.LogManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := mc.Ledger.LogManual(c.Request.Context(), c.GetUint("userID"), req)
	if err != nil {
		respondError(c, "LogManual", err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// POST /meals/log-from-template/:templateId
func (mc *MealController) LogFromTemplate(c *gin.Context) {
	id, ok := idParam(c, "templateId")
	if !ok {
		return
	}
	out, err := mc.Ledger.LogFromTemplate(c.Request.Context(), c.GetUint("userID"), id)
	if err != nil {
		respondError(c, "LogFromTemplate", err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// PUT /meals/:logId
func (mc *MealController) Update(c *gin.Context) {
	id, ok := idParam(c, "logId")
	if !ok {
		return
	}
	var req ledger.UpdateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := mc.Ledger.UpdateLog(c.Request.Context(), c.GetUint("userID"), id, req)
	if err != nil {
		respondError(c, "UpdateLog", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// DELETE /meals/:logId
func (mc *MealController) Delete(c *gin.Context) {
	id, ok := idParam(c, "logId")
	if !ok {
		return
	}
	if err := mc.Ledger.DeleteLog(c.Request.Context(), c.GetUint("userID"), id); err != nil {
		respondError(c, "DeleteLog", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /meals/templates
func (mc *MealController) CreateTemplate(c *gin.Context) {
	var req ledger.MealTemplate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := mc.Ledger.CreateTemplate(c.Request.Context(), c.GetUint("userID"), req)
	if err != nil {
		respondError(c, "CreateTemplate", err)
		return
	}
	c.JSON(http.StatusCreated, out)
}
