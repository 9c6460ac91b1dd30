package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	trendwatcher "trendwatch/agents/trend-watcher"
	"trendwatch/shared/config"
	"trendwatch/shared/monitoring"
	"trendwatch/shared/scheduler"
)

func main() {
	once := flag.Bool("once", false, "run a single analysis and exit")
	query := flag.String("query", "", "override the configured topic query")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *query != "" {
		cfg.Analysis.Query = *query
	}
	if cfg.Analysis.Query == "" {
		log.Fatal("No topic query configured (set analysis.query or pass -query)")
	}

	// Create context that responds to signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	agent := trendwatcher.NewTrendAgent(cfg)
	monitor := monitoring.NewMonitor()
	s := scheduler.New(cfg, agent, monitor)

	if *once {
		fmt.Println("Running once...")
		if err := agent.Initialize(); err != nil {
			log.Fatalf("Failed to initialize agent: %v", err)
		}
		if err := s.RunOnce(ctx); err != nil {
			log.Fatalf("Failed to run: %v", err)
		}
		return
	}

	healthServer := monitoring.NewHealthServer(monitor, agent, fmt.Sprintf("%d", cfg.Monitoring.HealthPort))
	healthServer.Start()

	fmt.Println("Starting scheduler...")
	if err := s.Start(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Scheduler failed: %v", err)
	}
}
