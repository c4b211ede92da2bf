package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/cartreserve-backend/internal/delivery"
	"github.com/angelmondragon/cartreserve-backend/pkg/config"
	"github.com/angelmondragon/cartreserve-backend/pkg/db"
	"github.com/angelmondragon/cartreserve-backend/pkg/db/models"
	"github.com/angelmondragon/cartreserve-backend/pkg/logger"
	"github.com/angelmondragon/cartreserve-backend/pkg/migrate"
)

var errUsage = errors.New("usage")

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "migration command: up|down|status|version|create|validate|seed")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&opts.name, "name", "", "migration name (for create)")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	if err := run(logg, opts); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			flag.Usage()
		} else {
			fmt.Fprintf(os.Stderr, "migrate %s failed: %v\n", opts.cmd, err)
		}
		os.Exit(1)
	}
}

func run(logg *logger.Logger, opts options) error {
	// offline commands
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return fmt.Errorf("%w: missing -name for create", errUsage)
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return err
		}
		fmt.Println("created migration:", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return err
		}
		fmt.Println("migration validation passed")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": opts.cmd,
		"dir": opts.dir,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("sql database: %w", err)
	}
	logg.Info(ctx, "migrate ready")

	switch opts.cmd {
	case "up", "down", "status":
		return migrate.Run(ctx, sqlDB, opts.dir, opts.cmd)
	case "version":
		if opts.version == "" {
			return fmt.Errorf("%w: missing -version for version command", errUsage)
		}
		return migrate.MigrateToVersion(ctx, sqlDB, opts.dir, opts.version)
	case "seed":
		if cfg.App.IsProd() {
			return errors.New("refusing to seed delivery options in prod")
		}
		n, err := seedDeliveryOptions(ctx, delivery.NewRepository(dbClient.DB()))
		if err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "created", n), "delivery options seeded")
		return nil
	default:
		return fmt.Errorf("%w: unknown -cmd value %q", errUsage, opts.cmd)
	}
}

var defaultDeliveryOptions = []models.DeliveryOption{
	{Name: "Standard", Price: decimal.RequireFromString("5.00"), Method: "post", Timeframe: "3-5 days", SortOrder: 1, IsActive: true},
	{Name: "Express", Price: decimal.RequireFromString("12.00"), Method: "courier", Timeframe: "1-2 days", SortOrder: 2, IsActive: true},
	{Name: "Store pickup", Price: decimal.Zero, Method: "pickup", Window: "09:00-18:00", SortOrder: 3, IsActive: true},
}

// seedDeliveryOptions inserts the defaults when no option is active yet.
func seedDeliveryOptions(ctx context.Context, repo *delivery.Repository) (int, error) {
	existing, err := repo.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i := range defaultDeliveryOptions {
		opt := defaultDeliveryOptions[i]
		if err := repo.Create(ctx, &opt); err != nil {
			return i, err
		}
	}
	return len(defaultDeliveryOptions), nil
}
