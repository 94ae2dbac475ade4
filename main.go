package main

import (
	"github.com/wfunc/onepiecedle/catalog"
	"github.com/wfunc/onepiecedle/config"
	"github.com/wfunc/onepiecedle/logger"
	"github.com/wfunc/onepiecedle/monitor"
	"github.com/wfunc/onepiecedle/server"
)

func main() {
	// Initialize logger
	logger.Init()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Load the character roster and arc order. An empty roster is fatal:
	// no round could ever select a target.
	cat, err := catalog.Load(cfg.Data.CharactersFile, cfg.Data.ArcsFile)
	if err != nil {
		logger.Log.Fatalf("Failed to load catalog: %v", err)
	}
	logger.Log.Infof("Loaded %d characters", cat.Len())

	// Metrics endpoint on its own listener
	mon := monitor.NewMonitor("onepiecedle")
	mon.StartServer(cfg.Server.MonitorAddress)

	// Initialize Game Server
	gameServer := server.NewGameServer(cfg, cat, mon)

	// Start Server
	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
