// Command craftyd serves CRAFTY workspaces over gRPC.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	v1 "github.com/sachu255/CRAFTY-notes--sub000/internal/api/craftyv1"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/bootstrap"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/config"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/events"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/logger"
	grpcserver "github.com/sachu255/CRAFTY-notes--sub000/internal/server/grpc"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "craftyd:", err)
		os.Exit(2)
	}

	log, closeLog, err := logger.New(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "craftyd:", err)
		os.Exit(2)
	}
	defer func() { _ = closeLog() }()

	if err := run(cfg, log); err != nil {
		log.Error("exit", zap.Error(err))
		_ = closeLog()
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	log.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("backend", cfg.Backend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn("close", zap.Error(err))
		}
	}()

	effectsLog := log.Named("effects")
	err = events.Consume(ctx, app.PubSub, effectsLog, func(_ context.Context, e events.Envelope) error {
		app.Metrics.ObserveEffect(e.Effect)
		effectsLog.Debug("effect",
			zap.String("profileID", e.ProfileID),
			zap.String("kind", string(e.Effect.Kind)),
			zap.String("achievement", e.Effect.AchievementID),
			zap.Int64("amount", e.Effect.Amount),
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribe effects: %w", err)
	}

	go app.Workspace.Sweep(ctx, cfg.SessionIdle)

	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoverUnary(log),
			app.Metrics.UnaryInterceptor(),
			grpcserver.LoggingUnary(log),
			grpcserver.AuthUnary(app.Sessions),
		),
	}
	if cfg.TLSCert != "" {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			return fmt.Errorf("load TLS cert/key: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	} else {
		log.Warn("TLS disabled, serving plaintext")
	}
	s := grpc.NewServer(opts...)
	v1.RegisterCraftyServer(s, grpcserver.New(app.Sessions, app.Workspace))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	if cfg.Dev {
		reflection.Register(s)
	}

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr), zap.Bool("tls", cfg.TLSCert != ""))
		errCh <- s.Serve(lis)
	}()

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", app.Metrics.Handler())
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics: %w", err)
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	hs.Shutdown()
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsSrv.Shutdown(shutdownCtx)
		cancel()
	}
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.Stop()
	}

	if serveErr != nil {
		return serveErr
	}
	log.Info("shutdown complete")
	return nil
}
