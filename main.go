package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goancova/adapters/api"
	"goancova/internal/config"
	"goancova/internal/container"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("goancova: %v", err)
	}
}

// run owns every deferred cleanup, so a failure returns here before the
// process exits
func run() error {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create application container: %w", err)
	}
	defer func() {
		if err := appContainer.Shutdown(context.Background()); err != nil {
			log.Printf("Container shutdown failed: %v", err)
		}
	}()
	if err := appContainer.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}

	server := &http.Server{
		Addr:         ":" + appConfig.Server.Port,
		Handler:      api.NewServer(appContainer.Analysis),
		ReadTimeout:  appConfig.Server.ReadTimeout,
		WriteTimeout: appConfig.Server.WriteTimeout,
	}
	return serve(ctx, server)
}

// serve runs server until ctx is cancelled or the listener fails. A listen
// error is returned to the caller instead of ending the process.
func serve(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		log.Printf("Starting goancova server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
