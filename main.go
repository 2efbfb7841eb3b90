package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"triage_server/config"
	"triage_server/internal/bootstrap"
	"triage_server/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 30 * time.Second // Maximum time to wait for graceful shutdown
)

var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "Email triage server (Produtivo / Improdutivo)",
	Long: `triage classifies emails as Produtivo or Improdutivo and drafts a reply.
Without a subcommand it runs the API server and the job worker together.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context(), true, true)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd("api", "Run the HTTP API only", true, false))
	rootCmd.AddCommand(serveCmd("worker", "Run the job worker only", false, true))
	rootCmd.AddCommand(serveCmd("all", "Run the HTTP API and the job worker", true, true))
	rootCmd.AddCommand(classifyCmd())
}

func main() {
	// Load .env file if exists (for local development)
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd(use, short string, api, worker bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), api, worker)
		},
	}
}

func loadConfig(service string, out io.Writer) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Init(logger.Config{
		Level:   logger.ParseLevel(cfg.LogLevel),
		Output:  out,
		Service: service,
	})
	return cfg, nil
}

func serve(ctx context.Context, api, worker bool) error {
	cfg, err := loadConfig("triage", os.Stdout)
	if err != nil {
		return err
	}

	deps, cleanup, err := bootstrap.NewDependencies(cfg)
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}
	defer cleanup()

	errCh := make(chan error, 2)

	var w *bootstrap.Worker
	if worker {
		w, err = bootstrap.NewWorker(deps)
		switch {
		case err == nil:
			go func() {
				logger.Info("Starting worker...")
				w.Start()
				errCh <- nil
			}()
		case api:
			// The API still serves synchronous classification without a queue.
			logger.WithError(err).Warn("Worker disabled")
		default:
			return err
		}
	}

	if api {
		app := bootstrap.NewAPI(deps)
		go func() {
			addr := ":" + cfg.Port
			logger.Info("Starting API server on %s", addr)
			errCh <- app.Listen(addr)
		}()
		defer shutdownAPI(app.ShutdownWithTimeout)
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down (timeout: %v)...", shutdownTimeout)
	case err = <-errCh:
		if err != nil {
			logger.WithError(err).Error("Server stopped")
		}
	}

	if w != nil {
		stopWorker(w)
	}
	return err
}

func shutdownAPI(shutdown func(time.Duration) error) {
	if err := shutdown(shutdownTimeout); err != nil {
		logger.Error("Error shutting down: %v", err)
		return
	}
	logger.Info("API server shut down gracefully")
}

func stopWorker(w *bootstrap.Worker) {
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("Worker shut down gracefully")
	case <-time.After(shutdownTimeout):
		logger.Warn("Worker shutdown timed out")
	}
}
