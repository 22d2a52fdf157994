package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/aggregate"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for lead searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		agg, err := buildAggregator(cfg, "")
		if err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(agg, st, cfg.Aggregate.DefaultMaxResults),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutCtx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the API routes.
func newRouter(agg *aggregate.Aggregator, st store.Store, defaultMaxResults int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/search", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Query       string `json:"query"`
			Location    string `json:"location"`
			MaxResults  int    `json:"max_results"`
			MinScore    int    `json:"min_score"`
			MinPriority string `json:"min_priority"`
			Enrich      bool   `json:"enrich"`
			Save        bool   `json:"save"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.Query == "" {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}
		if body.MinPriority != "" && model.Priority(body.MinPriority).Rank() < 0 {
			writeError(w, http.StatusBadRequest, "unknown priority")
			return
		}
		if body.MaxResults == 0 {
			body.MaxResults = defaultMaxResults
		}

		result, err := agg.Run(req.Context(), body.Query, body.Location, aggregate.Options{
			MaxResults:  body.MaxResults,
			MinScore:    body.MinScore,
			MinPriority: model.Priority(body.MinPriority),
			Enrich:      body.Enrich,
		})
		if err != nil {
			zap.L().Error("serve: search failed",
				zap.String("query", body.Query),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "search failed")
			return
		}

		if body.Save {
			if _, err := st.SaveRun(req.Context(), result); err != nil {
				zap.L().Error("serve: save run failed", zap.Error(err))
			}
		}

		writeJSON(w, http.StatusOK, result)
	})

	r.Get("/api/runs", func(w http.ResponseWriter, req *http.Request) {
		runs, err := st.ListRuns(req.Context(), store.RunFilter{Query: req.URL.Query().Get("query")})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list runs failed")
			return
		}
		if runs == nil {
			runs = []store.Run{}
		}
		writeJSON(w, http.StatusOK, runs)
	})

	r.Get("/api/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		run, err := st.GetRun(req.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		leads, err := st.GetLeads(req.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load leads failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"run": run, "leads": leads})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
