package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bsb-logistics/ganttboard/infra/logger"
	"github.com/bsb-logistics/ganttboard/infra/mqtt"
	"github.com/bsb-logistics/ganttboard/internal/backendsim"
)

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Run the in-memory persistence service used for demos and tests",
	RunE:  runBackend,
}

func init() {
	rootCmd.AddCommand(backendCmd)
}

func runBackend(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return err
	}
	seed, err := backendsim.LoadSeed(cfg.Backend.SeedFile)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	opts := []backendsim.Option{backendsim.WithLogger(logger.New("backend"))}
	if cfg.MQTT.Enabled {
		n, err := mqtt.NewNotifier(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("mqtt notifier: %w", err)
		}
		defer n.Close()
		opts = append(opts, backendsim.WithNotifier(n))
	}
	// Seed offsets and defaults land on the board's wall clock.
	loc := cfg.Timeline.Zone()
	store := backendsim.NewStore(seed, backendsim.WithClock(func() time.Time { return time.Now().In(loc) }))
	srv := backendsim.NewServer(cfg.Backend, store, opts...)
	return srv.Start(ctx)
}
