// Package main is the entry point for the hippoplace placement tool. It loads
// a datacenter inventory snapshot, runs the hippopotamus-optimization engine
// over it, and reports the resulting VM-to-host placement.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/puneet-chandna/hippoplace/internal/allocation"
	"github.com/puneet-chandna/hippoplace/internal/config"
	"github.com/puneet-chandna/hippoplace/internal/domain"
	"github.com/puneet-chandna/hippoplace/internal/inventory"
	"github.com/puneet-chandna/hippoplace/internal/repository/postgres"
	"github.com/puneet-chandna/hippoplace/internal/repository/redis"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	inventoryPath := flag.String("inventory", "", "Path to datacenter inventory JSON")
	profile := flag.String("profile", "", "Weight profile: balanced, sla, or power (overrides config)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		println("hippoplace")
		println("Version:", version)
		println("Commit:", commit)
		println("Build Date:", buildDate)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		println("Failed to load config:", err.Error())
		os.Exit(1)
	}

	logger := setupLogger(cfg.Logging)
	defer logger.Sync()

	if *inventoryPath == "" {
		logger.Fatal("Missing required -inventory flag")
	}

	vms, hosts, err := inventory.Load(*inventoryPath)
	if err != nil {
		logger.Fatal("Failed to load inventory", zap.Error(err))
	}

	selectedProfile := cfg.Optimizer.Profile
	if *profile != "" {
		selectedProfile = *profile
	}

	logger.Info("Starting placement run",
		zap.String("version", version),
		zap.String("profile", selectedProfile),
		zap.Int("vm_count", len(vms)),
		zap.Int("host_count", len(hosts)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Received signal, finishing with best solution so far", zap.String("signal", sig.String()))
		cancel()
	}()

	if cfg.Optimizer.Deadline > 0 {
		var cancelDeadline context.CancelFunc
		ctx, cancelDeadline = context.WithTimeout(ctx, cfg.Optimizer.Deadline)
		defer cancelDeadline()
	}

	var opts []allocation.Option

	if cfg.Redis.Enabled {
		cache, err := redis.NewCache(cfg.Redis, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer cache.Close()
		opts = append(opts, allocation.WithCache(cache))
	}

	if cfg.Database.Enabled {
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer db.Close()
		opts = append(opts, allocation.WithStore(postgres.NewRunRepository(db, logger)))
	}

	policy, err := allocation.NewPolicy(selectedProfile, cfg.Optimizer.Parameters(), cfg.History.Size, logger, opts...)
	if err != nil {
		logger.Fatal("Invalid policy configuration", zap.Error(err))
	}

	placement, err := policy.Place(ctx, vms, hosts)
	if err != nil {
		logger.Fatal("Placement failed", zap.Error(err))
	}

	printReport(placement, hosts)
}

// printReport writes a human-readable placement summary to stdout.
func printReport(p *domain.Placement, hosts []domain.HostCapacity) {
	fmt.Printf("Run %s (%s profile)\n", p.RunID, p.Profile)
	fmt.Printf("  fitness=%.4f feasible=%t iterations=%d converged_after=%d stop=%s elapsed=%s\n",
		p.BestFitness, p.Feasible, p.Iterations, p.ConvergedAfter, p.StopReason, p.Elapsed)

	perHost := make(map[string][]string)
	for vm, host := range p.Mapping {
		perHost[host] = append(perHost[host], vm)
	}

	for _, host := range hosts {
		vms := perHost[host.ID]
		if len(vms) == 0 {
			continue
		}
		sort.Strings(vms)
		fmt.Printf("  %s: %d VMs %v\n", host.ID, len(vms), vms)
	}

	if len(p.Unplaced) > 0 {
		fmt.Printf("  unplaced: %v\n", p.Unplaced)
	}
}

// setupLogger configures the zap logger based on configuration.
func setupLogger(cfg config.LoggingConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapConfig zap.Config
	if cfg.Format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapConfig.Build()
	if err != nil {
		panic("Failed to create logger: " + err.Error())
	}
	return logger
}
