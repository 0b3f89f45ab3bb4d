package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PiusTetteh/301-GroupProject/internal/api"
	"github.com/PiusTetteh/301-GroupProject/internal/config"
	"github.com/PiusTetteh/301-GroupProject/internal/service"
	"github.com/PiusTetteh/301-GroupProject/internal/state"
	"github.com/PiusTetteh/301-GroupProject/internal/ws"
	"github.com/PiusTetteh/301-GroupProject/web"
)

func main() {
	configPath := flag.String("config", "monitor.yaml", "Path to kernel monitor configuration file")
	flag.Parse()

	// Load server config
	cfg := config.LoadConfig()

	// Load kernel process configuration
	monitorCfg, err := config.LoadMonitorConfig(*configPath)
	if err != nil {
		log.Printf("Warning: Could not load monitor config from %s: %v", *configPath, err)
		log.Println("Falling back to the bundled ./multikernel defaults. Create monitor.yaml to override.")
		monitorCfg = config.DefaultMonitorConfig()
	}

	store := state.NewStore()
	hub := ws.NewHub(store)
	supervisor := service.NewSupervisor(monitorCfg, store, hub)

	// Get embedded filesystems
	templatesFS := web.GetTemplatesFS()
	staticFS := web.GetStaticFS()

	// Create router
	router, err := api.NewRouter(supervisor, store, hub, templatesFS, staticFS)
	if err != nil {
		log.Fatalf("Failed to create router: %v", err)
	}

	// Create server
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting Multikernel Monitor on %s", cfg.Server.Address)
		log.Printf("Supervising command: %s", monitorCfg.Command)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stop the supervised kernel if it is still running
	if err := supervisor.Stop(); err != nil && !errors.Is(err, service.ErrNotRunning) {
		log.Printf("Error stopping kernel: %v", err)
	}

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}
