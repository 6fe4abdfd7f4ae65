package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vehicle-ticket-service/internal/export"
	"vehicle-ticket-service/internal/service"
)

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.Flags().String("date", "", "Day to compare as YYYY-MM-DD (default yesterday)")
	reconcileCmd.Flags().String("location", "", "Location id (default every active location)")
	reconcileCmd.Flags().String("xlsx-dir", "", "Write one workbook per location into this directory")
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare auto-captured entries against tickets for one day",
	Long: `Builds the comparison view of auto-captured entries against manually logged
tickets for a calendar day. Nothing is written to the database; the result is
printed as JSON and optionally exported as xlsx workbooks.`,
	RunE: runReconcile,
}

func runReconcile(cmd *cobra.Command, args []string) error {
	dateFlag, _ := cmd.Flags().GetString("date")
	locationFlag, _ := cmd.Flags().GetString("location")
	xlsxDir, _ := cmd.Flags().GetString("xlsx-dir")

	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	loc, err := cfg.Reconcile.Location()
	if err != nil {
		return err
	}

	day := time.Now().In(loc).AddDate(0, 0, -1)
	if dateFlag != "" {
		if day, err = time.ParseInLocation("2006-01-02", dateFlag, loc); err != nil {
			return fmt.Errorf("invalid --date %q: %w", dateFlag, err)
		}
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	var comparisons []*service.Comparison
	if locationFlag != "" {
		locationID, err := uuid.Parse(locationFlag)
		if err != nil {
			return fmt.Errorf("invalid --location: %w", err)
		}
		c, err := a.reconcile.Compare(ctx, locationID, day, "cli")
		if err != nil {
			return err
		}
		comparisons = append(comparisons, c)
	} else if comparisons, err = a.reconcile.CompareAll(ctx, day, "cli"); err != nil {
		return err
	}

	if xlsxDir != "" {
		for _, c := range comparisons {
			if err := writeWorkbook(xlsxDir, c); err != nil {
				return err
			}
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(comparisons)
}

func writeWorkbook(dir string, c *service.Comparison) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, export.Filename(c)))
	if err != nil {
		return err
	}
	defer f.Close()
	return export.WriteComparison(f, c)
}
