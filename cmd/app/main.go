package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ordertracker/cmd"
	"ordertracker/internal/core/application/courierstatus"
	"ordertracker/internal/core/application/usecases/commands"
	"ordertracker/internal/migrations"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ordertracker",
		Short:         "Order stage tracking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newMigrateCommand(), newStagesCommand())
	return root
}

func getConfigs() (cmd.Config, error) {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cmd.Config{}, fmt.Errorf("load .env: %w", err)
	}
	return cmd.ParseConfig(os.Getenv)
}

func openDatabase(config cmd.Config) (*gorm.DB, error) {
	db, err := gorm.Open(gorm_postgres.Open(config.DSN()), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background jobs",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			configs, err := getConfigs()
			if err != nil {
				return err
			}
			return serve(ctx, configs)
		},
	}
}

func serve(ctx context.Context, configs cmd.Config) error {
	appLogger, err := cmd.NewLogger(os.Stdout, configs.LogLevel, configs.LogFormat)
	if err != nil {
		return err
	}

	gormDB, err := openDatabase(configs)
	if err != nil {
		return err
	}
	if configs.DBAutoMigrate {
		sqlDB, dbErr := gormDB.DB()
		if dbErr != nil {
			return dbErr
		}
		if err = migrations.Up(sqlDB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	vocabulary := courierstatus.Default()
	if configs.CatalogFile != "" {
		file, fileErr := cmd.LoadCatalogFile(configs.CatalogFile)
		if fileErr != nil {
			return fileErr
		}
		if vocabulary, err = file.Vocabulary(); err != nil {
			return err
		}
	}

	app, err := cmd.NewCompositionRoot(configs, gormDB, vocabulary, appLogger)
	if err != nil {
		return err
	}
	if err = app.LoadStageRegistry(ctx); err != nil {
		return fmt.Errorf("stage registry: %w (run `ordertracker stages seed --file catalog.toml`)", err)
	}
	if configs.CourierAPIURL == "" {
		appLogger.WarnContext(ctx, "COURIER_API_URL is empty, courier pushes will fail and be retried")
	}
	if len(configs.WebhookTokens) == 0 {
		appLogger.WarnContext(ctx, "WEBHOOK_TOKENS is empty, every courier event will be rejected")
	}

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer app.Shutdown()
	defer jobManager.StopAll()

	e, err := app.CreateRouter(ctx)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort))
	}()
	appLogger.InfoContext(ctx, "HTTP server started", "port", configs.HTTPPort)

	select {
	case err = <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	appLogger.InfoContext(shutdownCtx, "shutting down")
	return e.Shutdown(shutdownCtx)
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Database migration management",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(_ *cobra.Command, args []string) error {
			configs, err := getConfigs()
			if err != nil {
				return err
			}

			db, err := sql.Open("postgres", configs.DSN())
			if err != nil {
				return err
			}
			defer db.Close()

			action := "up"
			if len(args) > 0 {
				action = args[0]
			}

			switch action {
			case "up":
				return migrations.Up(db)
			case "down":
				return migrations.Down(db)
			case "status":
				return migrations.Status(db)
			default:
				return fmt.Errorf("unknown migrate action %q", action)
			}
		},
	}
}

func newStagesCommand() *cobra.Command {
	stages := &cobra.Command{
		Use:   "stages",
		Short: "Stage registry management",
	}

	var file string
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Upsert the stage registry from a TOML catalog file",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			configs, err := getConfigs()
			if err != nil {
				return err
			}
			if file == "" {
				file = configs.CatalogFile
			}
			if file == "" {
				return errors.New("--file or CATALOG_FILE is required")
			}
			return seedStages(c.Context(), configs, file)
		},
	}
	seed.Flags().StringVar(&file, "file", "", "path to the TOML catalog file")

	stages.AddCommand(seed)
	return stages
}

func seedStages(ctx context.Context, configs cmd.Config, path string) error {
	appLogger, err := cmd.NewLogger(os.Stderr, configs.LogLevel, "text")
	if err != nil {
		return err
	}

	catalogFile, err := cmd.LoadCatalogFile(path)
	if err != nil {
		return err
	}
	stageList, err := catalogFile.StageList()
	if err != nil {
		return err
	}
	vocabulary, err := catalogFile.Vocabulary()
	if err != nil {
		return err
	}

	gormDB, err := openDatabase(configs)
	if err != nil {
		return err
	}

	app, err := cmd.NewCompositionRoot(configs, gormDB, vocabulary, appLogger)
	if err != nil {
		return err
	}

	command, err := commands.NewSeedStagesCommand(stageList)
	if err != nil {
		return err
	}
	if err = app.CreateSeedStagesCommandHandler().Handle(ctx, command); err != nil {
		return err
	}

	appLogger.InfoContext(ctx, "stage registry seeded", "file", path, "stages", len(stageList))
	return nil
}
