package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/solatis/policystore/internal/core/api"
	"github.com/solatis/policystore/internal/core/metrics"
	"github.com/solatis/policystore/internal/core/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start gRPC policy service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "127.0.0.1", "gRPC server host")
	serveCmd.Flags().Int("port", 50061, "gRPC server port")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	serverCfg := cfg.Server
	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		serverCfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		serverCfg.Port = port
	}
	if serverCfg.Port <= 0 || serverCfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", serverCfg.Port)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	database, st, err := openStore(ctx, m)
	if err != nil {
		return err
	}
	defer database.Close()

	service, err := api.NewPolicyService(st, logger)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	grpcServer, err := server.NewGRPCServer(&serverCfg, service, logger, m)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	errChan := make(chan error, 2)

	var metricsServer *http.Server
	if cfg.Metrics.Addr != "" {
		metricsServer = server.NewMetricsServer(cfg.Metrics.Addr, reg)
		go func() {
			logger.Info("serving metrics", zap.String("addr", cfg.Metrics.Addr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	logger.Info("starting policystore",
		zap.String("version", Version),
		zap.String("addr", serverCfg.Addr()),
		zap.String("table", st.Table()),
		zap.String("dialect", st.Dialect().Name),
	)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		logger.Error("server failed, shutting down", zap.Error(err))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 35*time.Second)
		defer cancel()
		if stopErr := stopServers(shutdownCtx, grpcServer, metricsServer); stopErr != nil {
			logger.Warn("shutdown after failure", zap.Error(stopErr))
		}
		return err
	case sig := <-sigChan:
		logger.Info("shutting down gracefully", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 35*time.Second)
	defer cancel()
	return stopServers(shutdownCtx, grpcServer, metricsServer)
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// stopServers shuts down the metrics server, when there is one, and then the
// gRPC server. Both are always attempted; the gRPC error wins.
func stopServers(ctx context.Context, grpcServer shutdowner, metricsServer *http.Server) error {
	var metricsErr error
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			metricsErr = fmt.Errorf("metrics server shutdown: %w", err)
		}
	}
	if err := grpcServer.Shutdown(ctx); err != nil {
		return err
	}
	return metricsErr
}
