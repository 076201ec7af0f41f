package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/imagevault/internal/server"
	"github.com/dmitrijs2005/imagevault/internal/server/config"
)

func main() {
	if err := run(context.Background(), config.LoadConfig()); err != nil {
		log.Fatalf("startup failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		return err
	}

	app.Run(ctx)
	return nil
}
