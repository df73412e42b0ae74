package main

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/pdrpinto/gridastar/internal/api"
	"github.com/pdrpinto/gridastar/internal/config"
	"github.com/pdrpinto/gridastar/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.SetLevel(cfg.LogLevel)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	gin.SetMode(cfg.GinMode)

	logger := log.StandardLogger()
	store := session.NewStore(logger)
	grids := api.NewGridController(store, api.Defaults{
		Width:     cfg.GridWidth,
		Height:    cfg.GridHeight,
		CellSize:  cfg.CellSize,
		StepDelay: cfg.StepDelay,

		MaxWidth:        cfg.MaxWidth,
		MaxHeight:       cfg.MaxHeight,
		MaxScatterSteps: cfg.MaxScatterSteps,
		WriteTimeout:    cfg.WriteTimeout,
	}, logger)

	router := api.NewRouter(api.Config{
		Addr:        cfg.Addr,
		BaseURL:     "/api",
		Controllers: []api.Controller{grids},
		Logger:      logger,
	})
	if err := router.Run(); err != nil {
		log.Fatalln(err)
	}
}
