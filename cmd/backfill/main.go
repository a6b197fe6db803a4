// backfill пересоздает подписанные ссылки приватных файлов, сохраненные в базе.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"filemanager/database"
	"filemanager/internal/app"
	"filemanager/internal/config"
	"filemanager/internal/logger"
	"filemanager/internal/services"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var batchSize int
	var dryRun bool

	flagSet := pflag.NewFlagSet("backfill", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "path to YAML config (default: config/config.yaml)")
	flagSet.IntVar(&batchSize, "batch-size", 0, "files per batch (default: files.backfill_batch_size)")
	flagSet.BoolVar(&dryRun, "dry-run", false, "report what would change without writing")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.Server.Env)

	if batchSize <= 0 {
		batchSize = cfg.Files.BackfillBatchSize
	}

	db, err := database.Connect(cfg.Database.DSN, database.Options{Silent: true})
	if err != nil {
		return err
	}

	disks, err := app.NewDisks(cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	container := services.NewServiceContainer(cfg.Files, disks, services.SystemClock)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := container.BackfillService.ResignStoredURLs(ctx, db, batchSize, dryRun)
	if report != nil {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if encodeErr := encoder.Encode(report); encodeErr != nil {
			return encodeErr
		}
	}
	return err
}
