// Command didrpcd serves DID attribute queries over gRPC and JSON-RPC
// from a Postgres mirror of the chain.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"

	didgrpc "github.com/blockberries/didrpc/grpc"
	"github.com/blockberries/didrpc/internal/config"
	"github.com/blockberries/didrpc/internal/metrics"
	"github.com/blockberries/didrpc/jsonrpc"
	"github.com/blockberries/didrpc/ledger/pgledger"
	"github.com/blockberries/didrpc/server"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configFile := pflag.String("config", os.Getenv("DIDRPC_CONFIG"), "optional config file (env format)")
	pflag.Parse()

	if err := run(*configFile); err != nil {
		slog.Error("didrpcd exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(configFile string) error {
	if err := config.InitConfig(configFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	ledger, err := pgledger.New(pool,
		pgledger.WithBlocksTable(cfg.Database.BlocksTable),
		pgledger.WithHistoryTable(cfg.Database.HistoryTable),
		pgledger.WithRefreshInterval(cfg.Database.RefreshInterval),
		pgledger.WithLogger(logger.With(slog.String("component", "pgledger"))),
	)
	if err != nil {
		return err
	}
	if err := ledger.Start(ctx); err != nil {
		return err
	}
	defer ledger.Close()
	logger.Info("ledger ready", slog.String("best", ledger.BestHash().String()))

	exporter := metrics.NewPrometheusExporter(prometheus.NewRegistry())
	srv := server.New(ledger,
		server.WithLogger(logger),
		server.WithTracer(tp.Tracer("didrpcd")),
		server.WithObserver(exporter),
		server.WithMinAPIVersion(cfg.Runtime.MinAPIVersion),
	)

	// gRPC
	grpcLis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	gs := grpc.NewServer(grpc.UnaryInterceptor(metrics.UnaryServerInterceptor(exporter)))
	grpcSrv := didgrpc.NewGRPCServerFor(srv)
	grpcSrv.Register(gs)

	// JSON-RPC
	mux := http.NewServeMux()
	mux.Handle("/", metrics.Middleware(exporter, logger, jsonrpc.MethodReadAttribute, jsonrpc.NewHandler(srv, logger)))
	httpSrv := &http.Server{Addr: cfg.Server.HTTPAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 3)
	go func() {
		logger.Info("gRPC server listening", slog.String("addr", cfg.Server.GRPCAddr))
		if err := gs.Serve(grpcLis); err != nil {
			serverErrors <- fmt.Errorf("gRPC server: %w", err)
		}
	}()
	go func() {
		logger.Info("JSON-RPC server listening", slog.String("addr", cfg.Server.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("JSON-RPC server: %w", err)
		}
	}()

	var metricsSrv *http.Server
	if cfg.Server.MetricsAddr != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", exporter.Handler())
		metricsSrv = &http.Server{Addr: cfg.Server.MetricsAddr, Handler: metricsMux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			logger.Info("metrics server listening", slog.String("addr", cfg.Server.MetricsAddr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErrors <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case runErr = <-serverErrors:
		logger.Error("server failed, shutting down", slog.Any("error", runErr))
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		grpcSrv.Stop(gs)
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, forcing gRPC stop")
		gs.Stop()
	}

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("JSON-RPC shutdown", slog.Any("error", err))
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics shutdown", slog.Any("error", err))
		}
	}

	logger.Info("shutdown complete")
	return runErr
}
