package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bsb-logistics/ganttboard/core/model"
	"github.com/bsb-logistics/ganttboard/pkg/export"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the board window as csv, json or an html chart",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "csv, json or html")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (stdout when empty)")
	exportCmd.Flags().StringVar(&rangeStart, "start", "", "window start (defaults to the board window)")
	exportCmd.Flags().StringVar(&rangeEnd, "end", "", "window end (defaults to the board window)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	vehicles, err := fetchWindow(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	r, err := windowRange(cfg)
	if err != nil {
		return err
	}
	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return writeExport(w, exportFormat, vehicles, r)
}

func writeExport(w io.Writer, format string, vehicles []model.Vehicle, r model.TimeRange) error {
	switch format {
	case "csv":
		return export.WriteCSV(w, vehicles)
	case "json":
		return export.WriteJSON(w, vehicles)
	case "html":
		return export.WriteChartHTML(w, vehicles, r)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
