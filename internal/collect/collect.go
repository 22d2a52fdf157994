// Package collect provides lead collectors: adapters that turn an
// external listing source into raw BusinessRecords. Browser-driven
// scrapers live outside this repo and hand their output over as JSON
// or CSV exports, which FileCollector ingests; HTTPCollector queries
// places-style JSON search APIs directly.
package collect

import (
	"context"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// SearchOpts carries per-search knobs down to a collector.
type SearchOpts struct {
	// MaxResults caps the records a single collector returns; 0 means
	// no cap.
	MaxResults int
}

// Collector is implemented by every lead source.
type Collector interface {
	// Name identifies the source in provenance and logs ("Google Maps").
	Name() string
	// Confidence is the source's self-reported reliability in [0,1].
	Confidence() float64
	// Search returns raw records for a query in a location. A failed
	// search returns an error; the orchestrator treats it as zero
	// records from this source.
	Search(ctx context.Context, query, location string, opts SearchOpts) ([]model.BusinessRecord, error)
}

// stamp fills provenance and confidence on freshly collected records.
func stamp(records []model.BusinessRecord, source string, confidence float64) []model.BusinessRecord {
	for i := range records {
		records[i].DataSource = source
		records[i].DataSources = []string{source}
		records[i].Confidence = confidence
		model.Sanitize(&records[i])
	}
	return records
}

func capResults(records []model.BusinessRecord, maxResults int) []model.BusinessRecord {
	if maxResults > 0 && len(records) > maxResults {
		return records[:maxResults]
	}
	return records
}
