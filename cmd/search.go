package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/aggregate"
	"github.com/sells-group/leadgen-cli/internal/export"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/webhook"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run the full lead pipeline for a search query",
	Long:  "Queries every configured source, deduplicates and merges the results, scores each lead, and writes a ranked list.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		query := args[0]
		location, _ := cmd.Flags().GetString("location")
		sources, _ := cmd.Flags().GetStringSlice("sources")
		maxResults, _ := cmd.Flags().GetInt("max-results")
		minScore, _ := cmd.Flags().GetInt("min-score")
		minPriority, _ := cmd.Flags().GetString("min-priority")
		enrichLeads, _ := cmd.Flags().GetBool("enrich")
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		webhookURL, _ := cmd.Flags().GetString("webhook")
		save, _ := cmd.Flags().GetBool("save")
		profile, _ := cmd.Flags().GetString("scoring-profile")

		if maxResults == 0 {
			maxResults = cfg.Aggregate.DefaultMaxResults
		}
		if minPriority != "" && model.Priority(minPriority).Rank() < 0 {
			return eris.Errorf("unknown priority %q (want Urgent, High, Medium, or Low)", minPriority)
		}

		agg, err := buildAggregator(cfg, profile)
		if err != nil {
			return err
		}

		start := time.Now()
		result, err := agg.Run(ctx, query, location, aggregate.Options{
			MaxResults:  maxResults,
			MinScore:    minScore,
			MinPriority: model.Priority(minPriority),
			Sources:     sources,
			Enrich:      enrichLeads,
		})
		if err != nil {
			return eris.Wrap(err, "search")
		}
		zap.L().Info("search: pipeline finished",
			zap.Int("leads", len(result.Leads)),
			zap.Duration("took", time.Since(start)),
		)

		if save {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			run, err := st.SaveRun(ctx, result)
			if err != nil {
				return eris.Wrap(err, "save run")
			}
			fmt.Fprintf(os.Stderr, "Saved run %s\n", run.ID)
		}

		if webhookURL != "" || cfg.Webhook.URL != "" {
			whCfg := webhook.Config{
				URL:         cfg.Webhook.URL,
				BatchSize:   cfg.Webhook.BatchSize,
				MaxAttempts: cfg.Webhook.MaxAttempts,
				Timeout:     time.Duration(cfg.Webhook.TimeoutSecs) * time.Second,
			}
			if webhookURL != "" {
				whCfg.URL = webhookURL
			}
			summary, err := webhook.New(whCfg).Send(ctx, query, location, result.Leads)
			if err != nil {
				return eris.Wrap(err, "webhook delivery")
			}
			fmt.Fprintf(os.Stderr, "Webhook: %d/%d batches delivered\n", summary.SentBatches, summary.TotalBatches)
		}

		return writeResult(result, format, output)
	},
}

func init() {
	searchCmd.Flags().String("location", "", "location to scope the search (e.g. \"Dubai, UAE\")")
	searchCmd.Flags().StringSlice("sources", nil, "restrict the run to these source names (default all)")
	searchCmd.Flags().Int("max-results", 0, "max leads to return (default from config)")
	searchCmd.Flags().Int("min-score", 0, "drop leads scoring below this")
	searchCmd.Flags().String("min-priority", "", "drop leads below this priority tier")
	searchCmd.Flags().Bool("enrich", false, "run website and AI enrichment on unique leads")
	searchCmd.Flags().String("format", "table", "output format (table, csv, json, xlsx)")
	searchCmd.Flags().StringP("output", "o", "", "output file (default stdout; required for xlsx)")
	searchCmd.Flags().String("webhook", "", "POST ranked leads to this URL in batches")
	searchCmd.Flags().Bool("save", false, "persist the run to the local database")
	searchCmd.Flags().String("scoring-profile", "", "YAML scoring profile overriding the defaults")
	rootCmd.AddCommand(searchCmd)
}

// writeResult renders leads in the requested format, to a file when
// output is set.
func writeResult(result *aggregate.Result, format, output string) error {
	meta := export.Meta{
		Query:       result.Query,
		Location:    result.Location,
		GeneratedAt: time.Now().UTC(),
	}

	switch format {
	case "table":
		w := os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return eris.Wrap(err, "create output")
			}
			defer f.Close() //nolint:errcheck
			w = f
		}
		formatLeadsTable(w, result.Leads)
		return nil
	case "csv":
		if output != "" {
			return export.WriteCSVFile(output, result.Leads)
		}
		return export.WriteCSV(os.Stdout, result.Leads)
	case "json":
		if output != "" {
			return export.WriteJSONFile(output, meta, result.Leads)
		}
		return export.WriteJSON(os.Stdout, meta, result.Leads)
	case "xlsx":
		if output == "" {
			return eris.New("xlsx format requires --output")
		}
		return export.WriteXLSXFile(output, result.Leads)
	default:
		return eris.Errorf("unknown format %q (want table, csv, json, or xlsx)", format)
	}
}

// formatLeadsTable writes a compact ranked table to w.
func formatLeadsTable(out io.Writer, leads []model.BusinessRecord) {
	if len(leads) == 0 {
		fmt.Fprintln(out, "No leads found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tNAME\tSCORE\tPRIORITY\tPHONE\tSOURCES")
	_, _ = fmt.Fprintln(w, "-\t----\t-----\t--------\t-----\t-------")

	for i, lead := range leads {
		name := lead.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		score, priority := 0, ""
		if lead.LeadScore != nil {
			score = lead.LeadScore.TotalScore
			priority = string(lead.LeadScore.Priority)
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%d\n",
			i+1, name, score, priority, lead.Phone, len(lead.DataSources),
		)
	}
	_ = w.Flush()
}
