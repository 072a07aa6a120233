package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/produtoapi/produto-api/app/config"
	"github.com/produtoapi/produto-api/app/produtos"
	"github.com/produtoapi/produto-api/app/server"
	"github.com/produtoapi/produto-api/app/telemetry"
	"github.com/produtoapi/produto-api/client"
	"github.com/produtoapi/produto-api/models"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := telemetry.NewLogger(os.Stdout, cfg.LogFormat, cfg.LogLevel, cfg.Telemetry.ServiceName)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telem, err := telemetry.NewTelemetry(ctx, telemetry.Options{
		ServiceName:  cfg.Telemetry.ServiceName,
		Environment:  cfg.AppEnv,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := telem.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", slog.Any("error", err))
		}
	}()

	db, err := models.OpenDatabase(models.DatabaseOptions{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.DSN,
		Logger:   logger,
		LogLevel: models.ParseLogLevel(cfg.Database.QueryLog),
	})
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	repo := models.NewProdutosRepository(db)
	service := produtos.NewService(repo, telem.Tracer(), telem.Meter(), logger)
	handler := produtos.NewHandler(service, logger)
	srv := server.NewServer(cfg.Server, handler, logger, telem)

	l, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(l)
	}()

	if cfg.StartupClient {
		go func() {
			c := client.New(server.LocalURL(l.Addr(), "/produtos"), nil, cfg.Server.ReadTimeout)
			if err := server.RunStartupClient(ctx, c, logger); err != nil {
				logger.Error("startup client failed", slog.Any("error", err))
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
