package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/collect"
	"github.com/sells-group/leadgen-cli/internal/dedup"
	"github.com/sells-group/leadgen-cli/internal/export"
	"github.com/sells-group/leadgen-cli/internal/model"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe <file>",
	Short: "Deduplicate a local JSON or CSV file of business records",
	Long:  "Reads records from a file, merges duplicates using the configured matcher thresholds, and writes the unique list.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, _ := cmd.Flags().GetString("source")
		confidence, _ := cmd.Flags().GetFloat64("confidence")
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		records, err := loadRecords(cmd.Context(), args[0], source, confidence)
		if err != nil {
			return err
		}

		deduper := dedup.New(dedup.MatcherConfig{
			NameThreshold:  cfg.Dedup.NameThreshold,
			MinPhoneDigits: cfg.Dedup.MinPhoneDigits,
		})
		unique := deduper.Deduplicate(records)

		zap.L().Info("dedupe: complete",
			zap.Int("input", len(records)),
			zap.Int("unique", len(unique)),
			zap.Int("duplicates_removed", len(records)-len(unique)),
		)
		fmt.Fprintf(os.Stderr, "%d records -> %d unique (%d duplicates merged)\n",
			len(records), len(unique), len(records)-len(unique))

		switch format {
		case "csv":
			if output != "" {
				return export.WriteCSVFile(output, unique)
			}
			return export.WriteCSV(os.Stdout, unique)
		case "json":
			if output != "" {
				return export.WriteJSONFile(output, export.Meta{}, unique)
			}
			return export.WriteJSON(os.Stdout, export.Meta{}, unique)
		default:
			return eris.Errorf("unknown format %q (want csv or json)", format)
		}
	},
}

func init() {
	dedupeCmd.Flags().String("source", "file", "source label stamped on records missing one")
	dedupeCmd.Flags().Float64("confidence", 0.5, "source confidence for records missing one")
	dedupeCmd.Flags().String("format", "json", "output format (csv, json)")
	dedupeCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(dedupeCmd)
}

// loadRecords reads and sanitizes business records from a JSON or CSV
// file, dropping records without a name.
func loadRecords(ctx context.Context, path, source string, confidence float64) ([]model.BusinessRecord, error) {
	c := collect.NewFileCollector(source, confidence, path)
	records, err := c.Search(ctx, "", "", collect.SearchOpts{})
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}

	valid := records[:0]
	for i := range records {
		if records[i].Valid() {
			valid = append(valid, records[i])
		}
	}
	return valid, nil
}
