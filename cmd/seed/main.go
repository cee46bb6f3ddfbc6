package main

import (
	"context"
	"flag"

	"github.com/madhava-poojari/educonnect-api/internal/config"
	"github.com/madhava-poojari/educonnect-api/internal/store"
	"github.com/madhava-poojari/educonnect-api/internal/utils"
	"github.com/sirupsen/logrus"
)

func main() {
	password := flag.String("password", "password123", "password given to every demo user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := cfg.NewLogger()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	repo, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer repo.Close()

	hash, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	if err := store.Seed(context.Background(), repo, hash); err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Info("seeded demo data")
}
