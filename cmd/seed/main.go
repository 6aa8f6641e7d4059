package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/dentest-backend/internal/app"
	"github.com/yungbote/dentest-backend/internal/data/db"
	"github.com/yungbote/dentest-backend/internal/data/repos"
	"github.com/yungbote/dentest-backend/internal/platform/envutil"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
	"github.com/yungbote/dentest-backend/internal/platform/shutdown"
	"github.com/yungbote/dentest-backend/internal/seed"
	"github.com/yungbote/dentest-backend/internal/services"
)

func main() {
	path := flag.String("file", "fixtures/content.yaml", "YAML content fixture to load")
	flag.Parse()

	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	if err := run(ctx, log, *path); err != nil {
		log.Error("seed failed", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger, path string) error {
	fh, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open fixtures: %w", err)
	}
	defer fh.Close()
	fixtures, err := seed.Decode(fh)
	if err != nil {
		return err
	}

	cfg := app.LoadConfig(log)
	database, err := db.NewDatabaseService(log, cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := db.AutoMigrateAll(database.DB()); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	gdb := database.DB()
	content := services.NewContentService(gdb, log,
		repos.NewSectionRepo(gdb, log),
		repos.NewSubjectRepo(gdb, log),
		repos.NewQuestionRepo(gdb, log),
	)
	rep := seed.NewSeeder(log, content).Apply(ctx, fixtures)
	if rep.Failed > 0 {
		log.Warn("some fixture rows were skipped", "failed", rep.Failed)
	}
	return nil
}
