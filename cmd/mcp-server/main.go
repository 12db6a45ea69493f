package main

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/patrickwarner/adinsights/internal/config"
	"github.com/patrickwarner/adinsights/internal/dataset"
	"github.com/patrickwarner/adinsights/internal/db"
	"github.com/patrickwarner/adinsights/internal/observability"
	"github.com/patrickwarner/adinsights/internal/reporting"
)

func main() {
	cfg := config.Load()

	// stdout carries the MCP protocol, so logs go to stderr
	logger, err := observability.InitLoggerWithService(cfg.ServiceName + "-mcp")
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger, cfg); err != nil {
		logger.Fatal("mcp server failed", zap.Error(err))
	}
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	th, err := cfg.Thresholds()
	if err != nil {
		return err
	}
	scale, err := cfg.Scale()
	if err != nil {
		return err
	}
	src, closeSrc, err := db.OpenSource(cfg)
	if err != nil {
		return err
	}
	defer closeSrc()

	metrics := observability.NewNoOpRegistry()
	store := dataset.NewStore(src, scale, logger, metrics)
	if _, err := store.Reload(ctx); err != nil {
		return err
	}
	go store.Watch(ctx, cfg.ReloadInterval)

	insights := &InsightsServer{
		store:      store,
		reports:    reporting.NewService(logger, metrics),
		thresholds: th,
		logger:     logger,
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "adinsights",
		Version: "1.0.0",
	}, nil)
	insights.register(server)

	var logBuffer bytes.Buffer
	transport := &mcp.LoggingTransport{
		Transport: &mcp.StdioTransport{},
		Writer:    &logBuffer,
	}

	logger.Info("MCP server running via stdio",
		zap.String("source", src.Name()),
		zap.String("tools", toolNames()))
	if err := server.Run(ctx, transport); err != nil && ctx.Err() == nil {
		logger.Error("mcp session ended", zap.String("mcp_logs", logBuffer.String()))
		return err
	}
	return nil
}
