package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/davidbyttow/govips/v2/vips"

	"github.com/btangonan/gif-maker/config"
	"github.com/btangonan/gif-maker/encoder"
	"github.com/btangonan/gif-maker/history"
	"github.com/btangonan/gif-maker/job"
	"github.com/btangonan/gif-maker/logger"
	"github.com/btangonan/gif-maker/publish"
	"github.com/btangonan/gif-maker/registry"
	"github.com/btangonan/gif-maker/routes"
	"github.com/btangonan/gif-maker/sweeper"
)

func main() {
	logger.Info("Starting GIF Maker server initialization")
	defer logger.Sync()

	outputDir := config.GetOutputDir()
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		logger.Fatalf("Failed to create output directory: %v", err)
	}
	if err := os.MkdirAll(config.GetDataDir(), 0755); err != nil {
		logger.Fatalf("Failed to create data directory: %v", err)
	}

	// libvips runs in-process and must be up before any strategy can fire.
	vips.LoggingSettings(nil, vips.LogLevelWarning)
	vips.Startup(nil)
	defer vips.Shutdown()

	logger.Debug("Registering encoder strategies")
	encoder.RegisterDefaults()

	// Initialize history store
	logger.Debug("Initializing history database")
	hist, err := history.Open(config.GetHistoryDBPath())
	if err != nil {
		logger.Fatalf("Failed to initialize history store: %v", err)
	}
	defer hist.Close()
	logger.Info("History database initialized successfully")

	publisher, err := publish.New(config.GetPublishBackend(), config.GetPublishConfig())
	if err != nil {
		logger.Fatalf("Failed to configure publish backend: %v", err)
	}
	if publisher != nil {
		logger.Infof("Mirroring finished GIFs to %s", config.GetPublishBackend())
	}

	reg := registry.NewStore(config.GetMaxJobs(), config.GetEvictBatch())
	orch := job.NewOrchestrator(reg, hist, publisher, outputDir)

	// Start retention sweeper for the life of the process
	logger.Infof("Starting retention sweeper (runs every %s)", config.GetSweepInterval())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel() // This will stop the sweeper when main exits
	sw := sweeper.New(reg, hist, outputDir, config.GetRetention(), config.GetKeepTerminal())
	go sw.Run(ctx, config.GetSweepInterval())

	// Register HTTP routes
	logger.Info("Registering HTTP routes")
	mux := http.NewServeMux()
	routes.New(reg, orch, hist, outputDir, config.GetMaxUploadBytes()).Register(mux)
	logger.Info("HTTP routes registered successfully")

	addr := fmt.Sprintf(":%d", config.GetPort())
	logger.Infof("GIF Maker server starting on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatalf("Server failed to start: %v", err)
	}
}
