// Package cmd holds the command line entry points of the board.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bsb-logistics/ganttboard/app"
	"github.com/bsb-logistics/ganttboard/config"
	"github.com/bsb-logistics/ganttboard/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "ganttboard",
	Short:        "Dispatch gantt board service",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads cfgPath. A missing file yields the defaults so the
// board can be tried without writing a configuration first.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		logger.New("main").Warnf("config %s not found, using defaults", cfgPath)
		return config.Default(), nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}
