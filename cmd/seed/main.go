// Command main seeds the events table for local development.
package main

import (
	"context"
	"flag"
	"log"

	"capes/internal/bootstrap"
	"capes/internal/config"
	"capes/internal/repository"
	"capes/internal/seed"
	"capes/internal/service"
)

func main() {
	count := flag.Int("events", 24, "Number of generated events")
	demo := flag.Bool("demo", true, "Include the built-in demo catalog")
	shouldClean := flag.Bool("clean", false, "Delete existing events and RSVPs before seeding")
	fakeSeed := flag.Int64("seed", 1, "Random seed for generated events")
	flag.Parse()

	log.Println("Event Seeder")
	log.Printf("Target: %d generated events, demo=%v, clean=%v\n", *count, *demo, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}
	if cfg.CatalogSource != config.CatalogSourceDatabase {
		log.Printf("Note: CATALOG_SOURCE=%s, the server will not read seeded events until it is set to %q",
			cfg.CatalogSource, config.CatalogSourceDatabase)
	}

	// Redis is only used to drop the cached catalog of a running server.
	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}

	catalog := service.NewCatalogService(config.CatalogSourceDatabase, repository.NewEventRepository(db), rdb, cfg.CatalogCacheTTL())
	n, err := seed.NewSeeder(db, catalog).Run(context.Background(), seed.Options{
		Demo:  *demo,
		Count: *count,
		Clean: *shouldClean,
		Seed:  *fakeSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Done. %d events written.", n)
}
