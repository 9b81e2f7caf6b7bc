package main

import (
	"context"
	"log"

	"bytebuddhi-be/internal/bootstrap"
	"bytebuddhi-be/internal/config"
	"bytebuddhi-be/internal/server"
	"bytebuddhi-be/internal/tracer"
	"bytebuddhi-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Indexing Consumer...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	color.Cyan("ByteBuddhi backend starting on port %s (%s)", cfg.App.Port, cfg.App.Environment)

	// 6. Run Server
	log.Fatal(srv.Run())
}
