package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/jj-tech-ranger/alx-project-nexus/config"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/app"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/clients"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/seed"

	"github.com/sirupsen/logrus"
)

func main() {
	fixturesPath := flag.String("fixtures", "seed/fixtures.yaml", "YAML fixtures to load")
	imageDir := flag.String("images", "media/seed", "directory that relative fixture image paths resolve against")
	reset := flag.Bool("reset", false, "drop all tables before seeding")
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.LoadConfig(logger)
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	fixtures, err := seed.LoadFile(*fixturesPath)
	if err != nil {
		logger.Fatalf("Failed to load fixtures: %v", err)
	}

	ctx := context.Background()
	database, err := app.OpenDB(ctx, cfg, *reset, logger)
	if err != nil {
		logger.Fatalf("Failed to prepare database: %v", err)
	}
	defer database.Close()

	a, err := app.New(ctx, cfg, database, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize application: %v", err)
	}
	defer a.Close()

	seeder := seed.NewSeeder(
		a.Categories, a.Products, a.Accounts, a.Addresses, a.Orders, a.Reviews,
		clients.NewImageHTTPClient(20*time.Second, cfg.MaxUploadBytes, logger),
		*imageDir,
		logger,
	)
	sum, err := seeder.Run(ctx, fixtures)
	if err != nil {
		logger.Errorf("Seeding failed after %d categories, %d products, %d users: %v", sum.Categories, sum.Products, sum.Users, err)
		os.Exit(1)
	}
	logger.Info("Seeding complete!")
}
