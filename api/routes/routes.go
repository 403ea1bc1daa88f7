package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/animesao/clan-bot/api/controllers"
	"github.com/animesao/clan-bot/internal/store"
)

func SetupRoutes(router *gin.Engine, st *store.Store) {
	healthController := controllers.NewHealthController(st)
	clanController := controllers.NewClanController(st)

	router.GET("/health", healthController.CheckHealth)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/clan/stats", clanController.GetStats)
		v1.GET("/clan/subclans", clanController.GetSubclans)
	}
}
