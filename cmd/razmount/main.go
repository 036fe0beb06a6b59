package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/DrChat/razmount/internal/logger"
	"github.com/DrChat/razmount/pkg/config"
	"github.com/DrChat/razmount/pkg/host"
	fuseHost "github.com/DrChat/razmount/pkg/host/fuse"
	"github.com/DrChat/razmount/pkg/hydrate"
	"github.com/DrChat/razmount/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: "+config.GetDefaultConfigPath()+")")
	mountPath := flag.String("mount", "", "Mount point (overrides config)")
	logLevel := flag.String("log-level", "", "Log level (DEBUG, INFO, WARN, ERROR; overrides config)")
	initCfg := flag.Bool("init", false, "Write a sample config file and exit")
	force := flag.Bool("force", false, "Overwrite an existing config file with --init")
	flag.Parse()

	if *initCfg {
		path, err := config.InitConfig(*force)
		if err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Config written to %s\n", path)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// CLI flags take precedence over file and environment.
	if *mountPath != "" {
		cfg.Mount.Path = *mountPath
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	logger.SetLevel(cfg.Logging.Level)
	if err := logger.SetOutput(cfg.Logging.Output); err != nil {
		log.Fatalf("Failed to configure log output: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("razmount - remote object store projection")
	logger.Info("Log level set to: %s", cfg.Logging.Level)
	logger.Info("Mount point: %s", cfg.Mount.Path)

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	client, err := config.CreateObjectClient(ctx, &cfg.Remote, metrics.NewRemoteMetrics())
	if err != nil {
		log.Fatalf("Failed to create remote client: %v", err)
	}

	store, err := config.CreateRangeStore(ctx, &cfg.Cache)
	if err != nil {
		log.Fatalf("Failed to create hydration cache: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close hydration cache: %v", err)
		}
	}()

	engine := hydrate.New(hydrate.Config{
		CaseInsensitive:  cfg.Mount.CaseInsensitive,
		OperationTimeout: cfg.Hydration.OperationTimeout,
		RetryAttempts:    cfg.Hydration.RetryAttempts,
		RetryBackoff:     cfg.Hydration.RetryBackoff,
		MaxRetryBackoff:  cfg.Hydration.MaxRetryBackoff,
		Limiter:          config.CreateLimiter(&cfg.Remote),
		Metrics:          metrics.NewEngineMetrics(),
		Sink:             host.LoggingSink{},
	}, client, store)

	logger.Info("Hydration configuration:")
	logger.Info("  Remote: %s", cfg.Remote.Type)
	logger.Info("  Cache: %s", cfg.Cache.Type)
	logger.Info("  Operation timeout: %v", cfg.Hydration.OperationTimeout)
	logger.Info("  Retry attempts: %d", cfg.Hydration.RetryAttempts)
	if cfg.Remote.RequestsPerSecond > 0 {
		logger.Info("  Throttle: %d req/s (burst %d)", cfg.Remote.RequestsPerSecond, cfg.Remote.Burst)
	} else {
		logger.Info("  Throttle: disabled")
	}
	logger.Info("  Case-insensitive paths: %t", cfg.Mount.CaseInsensitive)

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(metrics.ServerConfig{
			Listen: cfg.Metrics.Listen,
			Path:   cfg.Metrics.Path,
		})
		go func() {
			if err := srv.Start(ctx); err != nil {
				logger.Error("Metrics server error: %v", err)
			}
		}()
	}

	mount := fuseHost.New(engine, cfg.Mount.Path)

	mountDone := make(chan error, 1)
	go func() {
		mountDone <- mount.Mount(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Projection mounted at %s. Press Ctrl+C to unmount.", cfg.Mount.Path)

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, unmounting...")
		cancel()

		if err := <-mountDone; err != nil && err != context.Canceled {
			logger.Error("Unmount error: %v", err)
			os.Exit(1)
		}
		logger.Info("Unmounted cleanly")

	case err := <-mountDone:
		if err != nil {
			logger.Error("Mount error: %v", err)
			os.Exit(1)
		}
		logger.Info("Projection unmounted")
	}
}
