package zeroshot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soundprediction/zeroshot"
	"github.com/soundprediction/zeroshot/pkg/config"
	"github.com/soundprediction/zeroshot/pkg/server"
	"github.com/soundprediction/zeroshot/pkg/utils"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the zeroshot HTTP server",
	Long: `Start the zeroshot HTTP server.

The server provides endpoints for:
- Classifying text (POST /api/v1/classify)
- Listing the provider chain (GET /api/v1/providers)
- Health checks (/health, /ready, /live)

Callers may send their own inference token in the X-Inference-Token header.
Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "release", "Server mode (debug, release, test)")
	serverCmd.Flags().StringSlice("providers", nil, "Provider order (local, remote)")
	serverCmd.Flags().Int("attempt-timeout", 0, "Per-provider timeout in seconds")
	serverCmd.Flags().String("telemetry-parquet-path", "", "Directory for error records")
	serverCmd.Flags().String("attempts-path", "", "Directory for provider attempt records")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	overrideConfigWithFlags(cmd, cfg)

	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, flush := newLogger(cfg)
	defer flush()

	client, err := zeroshot.NewClientFromConfig(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize classifier: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close classifier", "error", err)
		}
	}()
	log.Info("classifier ready", "providers", client.Providers())

	srv := server.New(cfg, client, log)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	utils.SafeGo(func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}, func(err error) {
		serverErrChan <- err
	})

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Info("received signal", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		log.Info("server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") || cfg.Server.Mode == "" {
		cfg.Server.Mode = serverMode
	}
	if cmd.Flags().Changed("providers") {
		cfg.Classifier.Providers, _ = cmd.Flags().GetStringSlice("providers")
	}
	if cmd.Flags().Changed("attempt-timeout") {
		cfg.Classifier.AttemptTimeout, _ = cmd.Flags().GetInt("attempt-timeout")
	}
	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
	}
	if cmd.Flags().Changed("attempts-path") {
		cfg.Telemetry.AttemptsPath, _ = cmd.Flags().GetString("attempts-path")
	}
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}
	if cfg.Classifier.AttemptTimeout < 0 {
		return fmt.Errorf("invalid attempt timeout: %d", cfg.Classifier.AttemptTimeout)
	}
	return nil
}
