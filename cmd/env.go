package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/aggregate"
	"github.com/sells-group/leadgen-cli/internal/collect"
	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/dedup"
	"github.com/sells-group/leadgen-cli/internal/enrich"
	"github.com/sells-group/leadgen-cli/internal/scorer"
	"github.com/sells-group/leadgen-cli/internal/store"
)

// buildAggregator wires the pipeline from loaded config: scoring
// profile, matcher thresholds, configured sources, and enrichers.
func buildAggregator(cfg *config.Config, scoringProfile string) (*aggregate.Aggregator, error) {
	scoringCfg, err := loadScoring(cfg, scoringProfile)
	if err != nil {
		return nil, err
	}

	aggCfg := aggregate.Config{
		MaxConcurrent:    cfg.Aggregate.MaxConcurrent,
		CollectorTimeout: cfg.Aggregate.CollectorTimeoutDuration(),
		EnrichTimeout:    cfg.Aggregate.EnrichTimeoutDuration(),
		EnrichRatePerSec: cfg.Aggregate.EnrichRatePerSec,
		SourcePriority:   cfg.Aggregate.SourcePriority,
	}
	dedupCfg := dedup.MatcherConfig{
		NameThreshold:  cfg.Dedup.NameThreshold,
		MinPhoneDigits: cfg.Dedup.MinPhoneDigits,
	}

	agg := aggregate.New(aggCfg, dedupCfg, scoringCfg)

	for _, f := range cfg.Sources.Files {
		agg.Register(collect.NewFileCollector(f.Name, f.Confidence, f.Path))
	}
	for _, a := range cfg.Sources.APIs {
		agg.Register(collect.NewHTTPCollector(collect.HTTPCollectorConfig{
			Name:       a.Name,
			Endpoint:   a.Endpoint,
			APIKey:     a.APIKey,
			Confidence: a.Confidence,
			Timeout:    time.Duration(a.TimeoutSecs) * time.Second,
			RatePerSec: a.RatePerSec,
		}))
	}

	if cfg.Enrich.Website {
		agg.RegisterEnricher(enrich.NewWebTech(enrich.WebTechConfig{
			Timeout: time.Duration(cfg.Enrich.TimeoutSecs) * time.Second,
		}))
	}
	if cfg.Enrich.AI {
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("ai enrichment enabled but anthropic.key is not set")
		}
		agg.RegisterEnricher(enrich.NewClassifier(enrich.ClassifierConfig{
			APIKey:    cfg.Anthropic.Key,
			Model:     cfg.Anthropic.Model,
			MaxTokens: int64(cfg.Anthropic.MaxTokens),
		}))
	}

	return agg, nil
}

// loadScoring returns the effective scoring config: defaults, or
// defaults overlaid with a YAML profile. An explicit --scoring-profile
// flag wins over the configured one.
func loadScoring(cfg *config.Config, flagProfile string) (scorer.Config, error) {
	profile := cfg.Scoring.Profile
	if flagProfile != "" {
		profile = flagProfile
	}
	if profile == "" {
		return scorer.DefaultConfig(), nil
	}
	sc, err := scorer.LoadProfile(profile)
	if err != nil {
		return scorer.Config{}, eris.Wrapf(err, "load scoring profile %s", profile)
	}
	return sc, nil
}

// initStore opens the run database and applies migrations.
func initStore(ctx context.Context) (*store.SQLiteStore, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
