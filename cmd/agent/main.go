package main

import (
	"context"
	"log"

	"habitsync/internal/agent"
	"habitsync/internal/agent/config"
)

func main() {
	ctx := context.Background()

	cfg := config.LoadConfig()
	app, err := agent.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
