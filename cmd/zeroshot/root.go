package zeroshot

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/soundprediction/zeroshot/pkg/config"
	"github.com/soundprediction/zeroshot/pkg/logger"
	"github.com/soundprediction/zeroshot/pkg/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "zeroshot",
		Short: "Zero-shot topic classification",
		Long: `zeroshot scores free text against caller-supplied topic labels without
task-specific training.

Providers are tried in order: a local NLI model, then a hosted inference
endpoint. When neither answers, a keyword overlap heuristic ranks the labels
so a valid request always gets a result.`,
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.zeroshot.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	// Bind flags to viper
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".zeroshot")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the stderr logger for cfg. When telemetry.parquet_path is
// set, ERROR records are also written to parquet; the returned flush must run
// before exit.
func newLogger(cfg *config.Config) (*slog.Logger, func()) {
	opts := &slog.HandlerOptions{
		Level:       logger.ParseLevel(cfg.Log.Level),
		ReplaceAttr: logger.RedactSecrets,
	}

	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = logger.NewColorHandler(os.Stderr, opts)
	}

	if cfg.Telemetry.ParquetPath == "" {
		return slog.New(handler), func() {}
	}

	ph, err := telemetry.NewParquetHandler(handler, cfg.Telemetry.ParquetPath)
	if err != nil {
		l := slog.New(handler)
		l.Warn("error tracking disabled", "error", err)
		return l, func() {}
	}

	l := slog.New(ph)
	return l, func() {
		if err := ph.Flush(); err != nil {
			l.Warn("failed to flush error records", "error", err)
		}
	}
}
