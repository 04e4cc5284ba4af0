package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"examprep/internal/api"
	"examprep/internal/api/handlers"
	"examprep/internal/db"
	"examprep/internal/gemini"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("FATAL: error loading .env file: %v", err)
		}
		log.Println("Warning: .env file not found. Relying on system environment variables.")
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// History logging is optional; without DATABASE_URL the service runs
	// without it.
	var database *db.DB
	if os.Getenv("DATABASE_URL") != "" {
		d, err := db.NewDB(ctx)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer d.Close()
		if err := d.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to ensure database schema: %v", err)
		}
		database = d
	} else {
		log.Println("DATABASE_URL not set; generation history disabled")
	}

	// Without a Gemini key the handlers serve mock responses so the
	// frontend keeps working locally.
	geminiClient, err := gemini.NewClient(ctx)
	if err != nil {
		log.Printf("Gemini not configured (%v); using mock responses", err)
	} else {
		defer geminiClient.Close()
		log.Println("Gemini key configured (backend)")
	}

	router := gin.Default()
	handler := handlers.NewHandler(geminiClient, database)
	api.SetupRoutes(router, handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}
