package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cloud-next/onboarding/internal/repository"
	"github.com/cloud-next/onboarding/pkg/config"
	"github.com/cloud-next/onboarding/pkg/database"
	"github.com/cloud-next/onboarding/pkg/logger"
)

func main() {
	demo := flag.Bool("demo", false, "also load the demo applications")
	flag.Parse()

	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.UsesMemoryStore() {
		log.Fatal("nothing to migrate with STORE_DRIVER=memory")
	}

	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, database.DefaultOptions(cfg.AppEnv))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	store := repository.NewGormStore(db)
	seed := repository.SeedDirectory
	if *demo {
		seed = repository.SeedDemo
	}
	if err := seed(ctx, store); err != nil {
		log.Fatal("seeding failed", zap.Error(err))
	}

	fmt.Fprintln(os.Stdout, "migrations completed")
}
