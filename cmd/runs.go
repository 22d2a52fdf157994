package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/export"
	"github.com/sells-group/leadgen-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect saved search runs",
	Long:  "Commands for listing saved runs and exporting their leads.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved search runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		query, _ := cmd.Flags().GetString("query")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{Query: query, Limit: limit})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run's stats and metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// -- runs export --

var runsExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a run's leads",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs export")
		}
		leads, err := st.GetLeads(ctx, run.ID)
		if err != nil {
			return eris.Wrap(err, "runs export")
		}

		meta := export.Meta{Query: run.Query, Location: run.Location, GeneratedAt: run.CreatedAt}
		switch format {
		case "table":
			formatLeadsTable(os.Stdout, leads)
			return nil
		case "csv":
			if output != "" {
				return export.WriteCSVFile(output, leads)
			}
			return export.WriteCSV(os.Stdout, leads)
		case "json":
			if output != "" {
				return export.WriteJSONFile(output, meta, leads)
			}
			return export.WriteJSON(os.Stdout, meta, leads)
		case "xlsx":
			if output == "" {
				return eris.New("xlsx format requires --output")
			}
			return export.WriteXLSXFile(output, leads)
		default:
			return eris.Errorf("unknown format %q (want table, csv, json, or xlsx)", format)
		}
	},
}

func init() {
	runsListCmd.Flags().String("query", "", "filter by exact search query")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsExportCmd.Flags().String("format", "table", "output format (table, csv, json, xlsx)")
	runsExportCmd.Flags().StringP("output", "o", "", "output file (default stdout; required for xlsx)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsExportCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []store.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tQUERY\tLOCATION\tLEADS\tDUPES\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t-----\t--------\t-----\t-----\t-------")

	for _, r := range runs {
		query := r.Query
		if len(query) > 30 {
			query = query[:27] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			truncateID(r.ID),
			query,
			r.Location,
			r.LeadCount,
			r.Stats.DuplicatesRemoved,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
