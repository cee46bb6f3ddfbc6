package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/madhava-poojari/educonnect-api/internal/config"
	"github.com/madhava-poojari/educonnect-api/internal/server"
	"github.com/madhava-poojari/educonnect-api/internal/store"
	"github.com/madhava-poojari/educonnect-api/internal/utils"
	"github.com/sirupsen/logrus"
)

const demoPassword = "password123"

func openStore(cfg *config.Config, log *logrus.Logger) (store.Repository, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory store")
		return store.NewMemoryStore(), nil
	}
	return store.NewGormStore(cfg.DatabaseURL)
}

func avatarStorage(cfg *config.Config) utils.AvatarStorage {
	if cfg.UseR2() {
		return utils.NewR2Storage(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, cfg.R2Endpoint, cfg.R2BucketName, cfg.R2URLTTL)
	}
	return utils.NewFileStorage(cfg.UploadDir, cfg.UploadBaseURL)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openStore(cfg, log)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer repo.Close()

	if cfg.SeedDemoData {
		hash := ""
		if cfg.AuthMode == config.AuthModePassword {
			if hash, err = utils.HashPassword(demoPassword); err != nil {
				log.Fatalf("hash demo password: %v", err)
			}
		}
		if err := store.Seed(ctx, repo, hash); err != nil {
			log.Fatalf("seed: %v", err)
		}
		log.Info("demo data loaded")
	}

	srv := server.NewServer(cfg, repo, avatarStorage(cfg), log).NewHTTPServer()
	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.BindAddr, "auth_mode": cfg.AuthMode}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}
