/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the operational risk capital engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env file (if present) and parse command-line flags
  2. Initialize SQLite store
  3. Seed the default parameter version on a fresh database
  4. Create API handler and batch scheduler
  5. Start server with graceful shutdown

CONFIGURATION:
  Flags take precedence; each falls back to an environment variable
  (loaded from .env via godotenv when the file exists):

  -port       HTTP server port (default: 8080, env PORT)
  -db         SQLite database path (default: capital.db, env DATABASE_PATH)
              Use ":memory:" for an in-memory database
  -env-id     Environment identifier pinned into lineage records
              (default: "default", env ENVIRONMENT_ID)
  -scheduler  Enable the daily batch calculation scheduler (default: true)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/capital.db"

  # Run with in-memory database, no scheduler
  ./server -db=":memory:" -scheduler=false

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/warp/capital-engine/api"
	"github.com/warp/capital-engine/store/sqlite"
)

func main() {
	// .env is optional; flags below fall back to its values
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DATABASE_PATH", "capital.db"), "SQLite database path")
	envID := flag.String("env-id", envStr("ENVIRONMENT_ID", "default"), "Environment identifier for lineage records")
	schedulerOn := flag.Bool("scheduler", true, "Enable the batch calculation scheduler")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store, *envID)

	// A fresh database gets the built-in regulatory parameter set
	if err := handler.SeedDefaultParameters(context.Background()); err != nil {
		log.Printf("Warning: Failed to seed default parameters: %v", err)
	}

	// Batch scheduler
	scheduler := api.NewCalculationScheduler(store, handler)
	scheduler.Enabled = *schedulerOn
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
