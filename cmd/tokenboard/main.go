// ====================================
// File: cmd/tokenboard/main.go
// ====================================
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/tokenboard/internal/app"
	"github.com/rovshanmuradov/tokenboard/internal/config"
	"github.com/rovshanmuradov/tokenboard/internal/export"
	"github.com/rovshanmuradov/tokenboard/internal/utils/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "path to the configuration file (JSON or YAML)")
	exportDir := flag.String("export", "", "fetch one snapshot, write it to this directory and exit")
	exportFormat := flag.String("format", "csv", "export format: csv or json")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     cfg.LogMaxSizeMB,
		MaxAge:      cfg.LogMaxAgeDays,
		MaxBackups:  cfg.LogMaxBackups,
		Compress:    cfg.LogCompress,
		Development: cfg.DebugLogging,
		BufferSize:  cfg.LogBufferSize,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, err := app.NewRunner(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tokenboard", zap.Error(err))
	}

	if *exportDir != "" {
		format, err := export.ParseFormat(*exportFormat)
		if err != nil {
			log.Fatal("Invalid export format", zap.Error(err))
		}
		end := log.TrackPerformance("export")
		path, err := runner.Export(ctx, *exportDir, format)
		end()
		if err != nil {
			log.LogError("Export failed", err)
			os.Exit(1)
		}
		log.Info("Snapshot exported", zap.String("file", path))
		return
	}

	if err := runner.Run(ctx); err != nil {
		log.LogError("Tokenboard stopped with error", err)
		os.Exit(1)
	}
}
