package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/acadien/deuxcents/internal/server"
)

var CLI struct {
	Port            int    `short:"p" env:"PORT" default:"8080" help:"Port to listen on"`
	FrontendURL     string `env:"FRONTEND_URL" help:"Frontend origin allowed to connect"`
	LogLevel        string `short:"l" env:"LOG_LEVEL" default:"info" help:"Log level (debug, info, warn, error)"`
	Tables          string `short:"c" env:"TABLES_CONFIG" help:"Path to HCL seed table file"`
	IntegrationTest bool   `env:"INTEGRATION_TEST" help:"Disable gameplay pacing delays"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logger := log.New(os.Stderr)
	switch CLI.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	seed, err := server.LoadSeedConfig(CLI.Tables)
	if err != nil {
		fmt.Printf("Error loading seed tables: %v\n", err)
		kctx.Exit(1)
	}

	clock := quartz.NewReal()
	service := server.NewService(logger, server.ServiceOptions{
		Clock:  clock,
		Pacing: !CLI.IntegrationTest,
	})
	if err := service.SeedTables(seed); err != nil {
		fmt.Printf("Error seeding tables: %v\n", err)
		kctx.Exit(1)
	}

	addr := fmt.Sprintf(":%d", CLI.Port)
	srv := server.NewServer(addr, CLI.FrontendURL, service, logger)
	supervisor := server.NewSupervisor(service, clock, logger)

	logger.Info("starting deux cents server",
		"addr", addr,
		"tables", len(seed.Tables),
		"pacing", !CLI.IntegrationTest)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error { return supervisor.Run(ctx) })
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		return srv.Stop()
	})

	if err := g.Wait(); err != nil {
		logger.Error("server failed", "error", err)
		kctx.Exit(1)
	}
}
