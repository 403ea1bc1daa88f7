package server

import (
	"github.com/gin-gonic/gin"
	"github.com/animesao/clan-bot/api/routes"
	"github.com/animesao/clan-bot/config"
	"github.com/animesao/clan-bot/internal/store"
)

type Server struct {
	router *gin.Engine
	config *config.Config
	store  *store.Store
}

func NewServer(cfg *config.Config, st *store.Store) *Server {
	if cfg.Logger.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	return &Server{
		router: gin.Default(),
		config: cfg,
		store:  st,
	}
}

func (s *Server) SetupRoutes() {
	routes.SetupRoutes(s.router, s.store)
}

func (s *Server) Start() error {
	return s.router.Run(s.config.API.Address)
}
