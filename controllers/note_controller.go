package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
	"github.com/GG-Muniz/FlavorLab-sub000/services"
	"github.com/GG-Muniz/FlavorLab-sub000/utils"
)

type NoteController struct {
	Notes *services.NoteService
}

func NewNoteController(ns *services.NoteService) *NoteController {
	return &NoteController{Notes: ns}
}

func noteDay(c *gin.Context) (time.Time, bool) {
	d := c.Param("date")
	if d == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return time.Time{}, false
	}
	day, err := utils.ParseDay(d)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return time.Time{}, false
	}
	return day, true
}

func (nc *NoteController) Get(c *gin.Context) {
	day, ok := noteDay(c)
	if !ok {
		return
	}
	out, err := nc.Notes.Get(c.Request.Context(), c.GetUint("userID"), day)
	if err != nil {
		respondError(c, "GetNote", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (nc *NoteController) Save(c *gin.Context) {
	day, ok := noteDay(c)
	if !ok {
		return
	}
	var req ledger.SaveNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := nc.Notes.Save(c.Request.Context(), c.GetUint("userID"), day, req.Text)
	if err != nil {
		respondError(c, "SaveNote", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (nc *NoteController) Delete(c *gin.Context) {
	day, ok := noteDay(c)
	if !ok {
		return
	}
	if err := nc.Notes.Delete(c.Request.Context(), c.GetUint("userID"), day); err != nil {
		respondError(c, "DeleteNote", err)
		return
	}
	c.Status(http.StatusNoContent)
}
