package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"

	"github.com/Wang-tianhao/widget-auth-go/internal/config"
	"github.com/Wang-tianhao/widget-auth-go/internal/observability"
	"github.com/Wang-tianhao/widget-auth-go/widgetauth"
)

func main() {
	if err := run(); err != nil {
		slog.Error("token server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level, _ := cfg.Level()
	logger := observability.NewLogger(os.Stdout, level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	gw, err := widgetauth.NewGateway(widgetauth.WithLogger(logger))
	if err != nil {
		return err
	}

	// HTTP
	metrics := observability.NewHTTPMetrics()
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), metrics.Middleware(), widgetauth.RequestID())
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	widgetauth.RegisterRoutes(router, gw)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// gRPC
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(widgetauth.UnaryServerInterceptor()))
	widgetauth.RegisterTokenService(grpcServer, gw)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}

	errs := make(chan error, 3)
	go func() {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "route", widgetauth.TokenRoute)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
	go func() {
		logger.Info("metrics server starting", "addr", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
	go func() {
		logger.Info("gRPC server starting", "addr", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			errs <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err = <-errs:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	grpcServer.GracefulStop()
	_ = metricsServer.Shutdown(shutdownCtx)
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	logger.Info("token server stopped")
	return err
}
