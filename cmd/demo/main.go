// Package main runs the API against an all-local stack: in-memory SQLite
// with seeded recipes, an in-process cache and the deterministic mock
// provider. Useful for trying the chat loop without external services.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/handsapp/backend/internal/infrastructure/container"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system env vars")
	}

	app := fx.New(
		fx.NopLogger,
		container.DemoModule,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start demo: %v", err)
	}

	fmt.Println("Demo server running. Try:")
	fmt.Println(`  curl -N -X POST localhost:8080/api/v1/chat/stream -d '{"prompt":"something with chicken for dinner"}'`)

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		log.Fatalf("Failed to stop demo gracefully: %v", err)
	}
}
