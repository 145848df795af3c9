package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/angelmondragon/pharmacy-backend/internal/seed"
	"github.com/angelmondragon/pharmacy-backend/pkg/config"
	"github.com/angelmondragon/pharmacy-backend/pkg/db"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	file := flag.String("file", "cmd/seed/fixtures.yaml", "seed YAML file")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "pharmacy-seed"})
	ctx := logg.WithField(context.Background(), "file", *file)

	fixture, err := seed.ReadFile(*file)
	if err != nil {
		exitf("%v", err)
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "pharmacy-seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	loader, err := seed.NewLoader(dbClient, logg)
	requireResource(ctx, logg, "seed loader", err)

	summary, err := loader.Load(ctx, fixture)
	if err != nil {
		exitf("seed failed: %v", err)
	}
	fmt.Printf("seeded users=%d categories=%d medicines=%d banners=%d heroSlides=%d coupons=%d\n",
		summary.Users, summary.Categories, summary.Medicines, summary.Banners, summary.HeroSlides, summary.Coupons)
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
