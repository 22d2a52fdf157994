// Package aggregate orchestrates the lead pipeline: fan out to source
// collectors, fan in to the deduplicator, optional enrichment, lead
// scoring, then filter/rank/limit. Partial source failure is the
// normal case, not an error: a collector or enricher that fails
// contributes nothing and the pipeline carries on.
package aggregate

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/collect"
	"github.com/sells-group/leadgen-cli/internal/dedup"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/scorer"
)

// Enricher adds derived signals to a single record in place.
type Enricher interface {
	Name() string
	Enrich(ctx context.Context, rec *model.BusinessRecord) error
}

// Config tunes the orchestrator.
type Config struct {
	// MaxConcurrent bounds concurrent collector queries and concurrent
	// enrichment calls. Default 3.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`

	// CollectorTimeout bounds a single collector's search. Default 60s.
	CollectorTimeout time.Duration `yaml:"collector_timeout" mapstructure:"collector_timeout"`

	// EnrichTimeout bounds enrichment of a single record. Default 30s.
	EnrichTimeout time.Duration `yaml:"enrich_timeout" mapstructure:"enrich_timeout"`

	// EnrichRatePerSec throttles enrichment calls across the batch.
	// Default 1/s.
	EnrichRatePerSec float64 `yaml:"enrich_rate_per_sec" mapstructure:"enrich_rate_per_sec"`

	// SourcePriority fixes the concatenation order of collector output
	// so results are reproducible regardless of completion order.
	// Sources not listed follow in registration order.
	SourcePriority []string `yaml:"source_priority" mapstructure:"source_priority"`
}

// DefaultConfig returns standard orchestrator settings.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent:    3,
		CollectorTimeout: 60 * time.Second,
		EnrichTimeout:    30 * time.Second,
		EnrichRatePerSec: 1,
	}
}

// Options are the caller-supplied filters for one run.
type Options struct {
	MaxResults  int
	MinScore    int
	MinPriority model.Priority
	// Sources restricts the run to the named collectors. Empty means all.
	Sources []string
	// Enrich enables the enrichment stage when enrichers are registered.
	Enrich bool
}

// Stats summarizes one aggregation run.
type Stats struct {
	Sources           map[string]int `json:"sources"`
	TotalProcessed    int            `json:"total_processed"`
	Dropped           int            `json:"dropped"`
	TotalUnique       int            `json:"total_unique"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	Enriched          int            `json:"enriched"`
	EnrichFailed      int            `json:"enrich_failed"`
}

// Result is the ranked output of one run.
type Result struct {
	Query    string                 `json:"query"`
	Location string                 `json:"location"`
	Leads    []model.BusinessRecord `json:"leads"`
	Stats    Stats                  `json:"stats"`
}

// Aggregator runs the pipeline. One invocation owns its working list
// exclusively; the dedup/score stages are strictly sequential.
type Aggregator struct {
	cfg        Config
	collectors []collect.Collector
	enrichers  []Enricher
	deduper    *dedup.Deduplicator
	scorer     *scorer.LeadScorer
	limiter    *rate.Limiter
}

// New creates an Aggregator.
func New(cfg Config, dedupCfg dedup.MatcherConfig, scoringCfg scorer.Config) *Aggregator {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 3
	}
	if cfg.CollectorTimeout <= 0 {
		cfg.CollectorTimeout = 60 * time.Second
	}
	if cfg.EnrichTimeout <= 0 {
		cfg.EnrichTimeout = 30 * time.Second
	}
	if cfg.EnrichRatePerSec <= 0 {
		cfg.EnrichRatePerSec = 1
	}
	return &Aggregator{
		cfg:     cfg,
		deduper: dedup.New(dedupCfg),
		scorer:  scorer.New(scoringCfg),
		limiter: rate.NewLimiter(rate.Limit(cfg.EnrichRatePerSec), 1),
	}
}

// Register adds a collector. Registration order is the fallback
// concatenation order for sources missing from SourcePriority.
func (a *Aggregator) Register(c collect.Collector) {
	a.collectors = append(a.collectors, c)
}

// RegisterEnricher adds an enrichment collaborator, applied in
// registration order per record.
func (a *Aggregator) RegisterEnricher(e Enricher) {
	a.enrichers = append(a.enrichers, e)
}

// Run executes the full pipeline. The only error it returns is
// context cancellation; "no leads found" yields an empty Result.
func (a *Aggregator) Run(ctx context.Context, query, location string, opts Options) (*Result, error) {
	log := zap.L().With(
		zap.String("component", "aggregate"),
		zap.String("query", query),
		zap.String("location", location),
	)

	stats := Stats{Sources: make(map[string]int)}

	raw, err := a.collectAll(ctx, query, location, opts, &stats, log)
	if err != nil {
		return nil, err
	}

	valid := a.validate(raw, &stats, log)

	unique := a.deduper.Deduplicate(valid)
	stats.TotalUnique = len(unique)
	stats.DuplicatesRemoved = len(valid) - len(unique)
	log.Info("aggregate: deduplication complete",
		zap.Int("processed", len(valid)),
		zap.Int("unique", len(unique)),
		zap.Int("duplicates_removed", stats.DuplicatesRemoved),
	)

	if opts.Enrich && len(a.enrichers) > 0 {
		if err := a.enrichAll(ctx, unique, &stats, log); err != nil {
			return nil, err
		}
	}

	for i := range unique {
		ls := a.scorer.Score(&unique[i])
		unique[i].LeadScore = &ls
	}

	leads := a.finalize(unique, opts)
	log.Info("aggregate: run complete",
		zap.Int("final_results", len(leads)),
		zap.Int("sources_used", len(stats.Sources)),
	)

	return &Result{Query: query, Location: location, Leads: leads, Stats: stats}, nil
}

// collectAll fans out to every collector with bounded concurrency,
// then concatenates per-source results in the fixed priority order so
// the dedup outcome does not depend on completion order.
func (a *Aggregator) collectAll(ctx context.Context, query, location string, opts Options, stats *Stats, log *zap.Logger) ([]model.BusinessRecord, error) {
	bySource := make([][]model.BusinessRecord, len(a.collectors))
	enabled := a.enabledSet(opts.Sources)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.MaxConcurrent)

	for i, c := range a.collectors {
		if !enabled[i] {
			continue
		}
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, a.cfg.CollectorTimeout)
			defer cancel()

			records, err := c.Search(cctx, query, location, collect.SearchOpts{MaxResults: opts.MaxResults})
			if err != nil {
				// A failed source contributes zero records; the run continues.
				log.Warn("aggregate: collector failed",
					zap.String("source", c.Name()),
					zap.Error(err),
				)
				return nil
			}
			bySource[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var raw []model.BusinessRecord
	for _, i := range a.priorityOrder() {
		if !enabled[i] {
			continue
		}
		records := bySource[i]
		stats.Sources[a.collectors[i].Name()] = len(records)
		raw = append(raw, records...)
	}
	stats.TotalProcessed = len(raw)
	return raw, nil
}

// enabledSet maps collector indices to whether the run should query
// them, given an optional source-name filter.
func (a *Aggregator) enabledSet(sources []string) map[int]bool {
	enabled := make(map[int]bool, len(a.collectors))
	for i, c := range a.collectors {
		if len(sources) == 0 {
			enabled[i] = true
			continue
		}
		for _, name := range sources {
			if c.Name() == name {
				enabled[i] = true
				break
			}
		}
	}
	return enabled
}

// priorityOrder returns collector indices ordered by SourcePriority,
// with unlisted collectors trailing in registration order.
func (a *Aggregator) priorityOrder() []int {
	order := make([]int, 0, len(a.collectors))
	used := make(map[int]bool, len(a.collectors))

	for _, name := range a.cfg.SourcePriority {
		for i, c := range a.collectors {
			if !used[i] && c.Name() == name {
				order = append(order, i)
				used[i] = true
			}
		}
	}
	for i := range a.collectors {
		if !used[i] {
			order = append(order, i)
		}
	}
	return order
}

// validate sanitizes records and drops the malformed ones (no name)
// before they can reach the deduplicator.
func (a *Aggregator) validate(raw []model.BusinessRecord, stats *Stats, log *zap.Logger) []model.BusinessRecord {
	valid := raw[:0]
	for i := range raw {
		model.Sanitize(&raw[i])
		if !raw[i].Valid() {
			stats.Dropped++
			log.Debug("aggregate: dropped record without name",
				zap.String("source", raw[i].DataSource),
			)
			continue
		}
		valid = append(valid, raw[i])
	}
	return valid
}

// enrichAll runs every enricher over every unique record with bounded
// concurrency and a shared rate limit. Each record is owned by exactly
// one goroutine, so in-place mutation is safe without locks.
func (a *Aggregator) enrichAll(ctx context.Context, records []model.BusinessRecord, stats *Stats, log *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.MaxConcurrent)

	results := make([]bool, len(records))
	for i := range records {
		g.Go(func() error {
			rec := &records[i]
			ok := true
			for _, e := range a.enrichers {
				if err := a.limiter.Wait(gctx); err != nil {
					return err
				}
				ectx, cancel := context.WithTimeout(gctx, a.cfg.EnrichTimeout)
				err := e.Enrich(ectx, rec)
				cancel()
				if err != nil {
					// Failed enrichment leaves this record partial; the batch continues.
					log.Warn("aggregate: enrichment failed",
						zap.String("enricher", e.Name()),
						zap.String("business", rec.Name),
						zap.Error(err),
					)
					ok = false
				}
			}
			results[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, ok := range results {
		if ok {
			stats.Enriched++
		} else {
			stats.EnrichFailed++
		}
	}
	log.Info("aggregate: enrichment complete",
		zap.Int("enriched", stats.Enriched),
		zap.Int("failed", stats.EnrichFailed),
	)
	return nil
}

// finalize filters by minimum score/priority, ranks by score
// descending (stable, so insertion order breaks ties), and truncates.
func (a *Aggregator) finalize(records []model.BusinessRecord, opts Options) []model.BusinessRecord {
	out := make([]model.BusinessRecord, 0, len(records))
	minRank := opts.MinPriority.Rank()
	for _, r := range records {
		if opts.MinScore > 0 && r.LeadScore.TotalScore < opts.MinScore {
			continue
		}
		if minRank > 0 && r.LeadScore.Priority.Rank() < minRank {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LeadScore.TotalScore > out[j].LeadScore.TotalScore
	})

	if opts.MaxResults > 0 && len(out) > opts.MaxResults {
		out = out[:opts.MaxResults]
	}
	return out
}
