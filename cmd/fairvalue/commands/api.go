package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fairvalue/internal/api"
	"github.com/wonny/fairvalue/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 종목별 밸류에이션 엔드포인트 제공
- Prometheus 메트릭 노출 (METRICS_ENABLED)

Endpoints:
  GET  /health                      - Health check
  GET  /metrics                     - Prometheus metrics
  GET  /api/valuation/{ticker}      - 파이프라인 실행 (?growth=&pe=&foreign=&download=)
  GET  /api/config/valuation        - 현재 밸류에이션 설정과 해시

Example:
  go run ./cmd/fairvalue api
  go run ./cmd/fairvalue api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== fairvalue API Server ===")

	// 1. Wire config, logger, store, clients and orchestrator
	a, err := loadApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.log
	log.WithFields(map[string]interface{}{
		"port":        a.cfg.Port,
		"env":         a.cfg.Env,
		"config_hash": a.orchestrator.ConfigHash(),
	}).Info("Initializing API server")

	// 2. Metrics
	var metrics *api.Metrics
	var observer handlers.RunObserver
	if a.cfg.MetricsEnabled {
		metrics = api.NewMetrics()
		observer = metrics
	}

	// 3. Handler, router, server
	valuationHandler := handlers.NewValuationHandler(a.orchestrator, a.valuation, observer, log)
	router := api.NewRouter(valuationHandler, metrics, log)
	server := api.New(a.cfg, log, router)

	// 4. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	if metrics != nil {
		fmt.Println("  GET  /metrics")
	}
	fmt.Println("  GET  /api/valuation/{ticker}")
	fmt.Println("  GET  /api/config/valuation")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("Failed to start server")
			return err
		}
		return nil
	case <-quit:
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
