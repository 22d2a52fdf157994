package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/export"
	"github.com/sells-group/leadgen-cli/internal/scorer"
)

var scoreCmd = &cobra.Command{
	Use:   "score <file>",
	Short: "Score business records from a local JSON or CSV file",
	Long:  "Reads records from a file, applies the lead scoring model, and writes the records with scores, priorities, and recommendations attached.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, _ := cmd.Flags().GetString("scoring-profile")
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		scoringCfg, err := loadScoring(cfg, profile)
		if err != nil {
			return err
		}

		records, err := loadRecords(cmd.Context(), args[0], "file", 0.5)
		if err != nil {
			return err
		}

		ls := scorer.New(scoringCfg)
		for i := range records {
			score := ls.Score(&records[i])
			records[i].LeadScore = &score
		}

		switch format {
		case "table":
			formatLeadsTable(os.Stdout, records)
			return nil
		case "csv":
			if output != "" {
				return export.WriteCSVFile(output, records)
			}
			return export.WriteCSV(os.Stdout, records)
		case "json":
			if output != "" {
				return export.WriteJSONFile(output, export.Meta{}, records)
			}
			return export.WriteJSON(os.Stdout, export.Meta{}, records)
		default:
			return eris.Errorf("unknown format %q (want table, csv, or json)", format)
		}
	},
}

func init() {
	scoreCmd.Flags().String("scoring-profile", "", "YAML scoring profile overriding the defaults")
	scoreCmd.Flags().String("format", "table", "output format (table, csv, json)")
	scoreCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(scoreCmd)
}
