package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"vehicle-ticket-service/internal/config"
	"vehicle-ticket-service/internal/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "vehicle-ticket-service",
	Short:         "Service ticket lifecycle and price resolution server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default ./config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration and builds the root logger.
func bootstrap() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger.New(cfg.Log.Level, cfg.Log.Format), nil
}
