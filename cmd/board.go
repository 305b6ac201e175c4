package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bsb-logistics/ganttboard/config"
	"github.com/bsb-logistics/ganttboard/core/model"
	"github.com/bsb-logistics/ganttboard/infra/logger"
	"github.com/bsb-logistics/ganttboard/infra/remote"
	"github.com/bsb-logistics/ganttboard/pkg/export"
)

var (
	rangeStart string
	rangeEnd   string
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Print the vehicles and trips of the board window",
	RunE:  runBoard,
}

func init() {
	boardCmd.Flags().StringVar(&rangeStart, "start", "", "window start (defaults to the board window)")
	boardCmd.Flags().StringVar(&rangeEnd, "end", "", "window end (defaults to the board window)")
	rootCmd.AddCommand(boardCmd)
}

func runBoard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	vehicles, err := fetchWindow(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	return export.WriteTable(cmd.OutOrStdout(), vehicles)
}

// fetchWindow lists the vehicles of the requested range straight from the
// persistence service.
func fetchWindow(ctx context.Context, cfg *config.Config) ([]model.Vehicle, error) {
	r, err := windowRange(cfg)
	if err != nil {
		return nil, err
	}
	client := remote.NewClient(cfg.Remote, remote.WithLogger(logger.New("remote")))
	vehicles, err := client.ListVehicles(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return vehicles, nil
}

func windowRange(cfg *config.Config) (model.TimeRange, error) {
	zone := model.NewZone(cfg.Timeline.Zone())
	w := cfg.Timeline.Window(time.Now())
	r := model.TimeRange{Start: model.At(w.Start), End: model.At(w.End)}
	if rangeStart != "" {
		ts, err := zone.Parse(rangeStart)
		if err != nil {
			return r, err
		}
		r.Start = ts
	}
	if rangeEnd != "" {
		ts, err := zone.Parse(rangeEnd)
		if err != nil {
			return r, err
		}
		r.End = ts
	}
	return r, r.Validate()
}
