package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/animesao/clan-bot/api/models"
	"github.com/animesao/clan-bot/internal/store"
)

type HealthController struct {
	startTime time.Time
	store     *store.Store
}

func NewHealthController(st *store.Store) *HealthController {
	return &HealthController{
		startTime: time.Now(),
		store:     st,
	}
}

func (hc *HealthController) CheckHealth(c *gin.Context) {
	uptime := time.Since(hc.startTime)
	response := models.NewHealthResponse(uptime, hc.store.Stats())
	c.JSON(http.StatusOK, response)
}
