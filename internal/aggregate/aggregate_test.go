package aggregate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/collect"
	"github.com/sells-group/leadgen-cli/internal/dedup"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/scorer"
)

// fakeCollector returns a fixed record set, optionally after failing.
type fakeCollector struct {
	name       string
	confidence float64
	records    []model.BusinessRecord
	err        error
}

func (f *fakeCollector) Name() string        { return f.name }
func (f *fakeCollector) Confidence() float64 { return f.confidence }

func (f *fakeCollector) Search(_ context.Context, _, _ string, _ collect.SearchOpts) ([]model.BusinessRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.BusinessRecord, len(f.records))
	for i, r := range f.records {
		out[i] = r.Clone()
		out[i].DataSource = f.name
		out[i].Confidence = f.confidence
	}
	return out, nil
}

// fakeEnricher stamps a fixed classification, optionally failing.
type fakeEnricher struct {
	name string
	err  error
}

func (f *fakeEnricher) Name() string { return f.name }

func (f *fakeEnricher) Enrich(_ context.Context, rec *model.BusinessRecord) error {
	if f.err != nil {
		return f.err
	}
	if rec.Enrichment == nil {
		rec.Enrichment = &model.Enrichment{}
	}
	rec.Enrichment.AI = &model.AIClassification{BusinessSize: "SME"}
	return nil
}

func newTestAggregator(collectors ...collect.Collector) *Aggregator {
	agg := New(DefaultConfig(), dedup.DefaultMatcherConfig(), scorer.DefaultConfig())
	for _, c := range collectors {
		agg.Register(c)
	}
	return agg
}

func TestRun_MergesAcrossSources(t *testing.T) {
	gmaps := &fakeCollector{name: "google_maps", confidence: 0.9, records: []model.BusinessRecord{
		{Name: "ABC Consultants", Phone: "+971501112222", Rating: 4.2},
		{Name: "Gulf Trading House"},
	}}
	yelp := &fakeCollector{name: "yelp", confidence: 0.8, records: []model.BusinessRecord{
		{Name: "ABC Consulting Group", Phone: "+971 50 111 2222", Email: "info@abc.ae"},
	}}

	agg := newTestAggregator(gmaps, yelp)
	result, err := agg.Run(context.Background(), "consultants", "Dubai", Options{})
	require.NoError(t, err)

	require.Len(t, result.Leads, 2)
	assert.Equal(t, 3, result.Stats.TotalProcessed)
	assert.Equal(t, 2, result.Stats.TotalUnique)
	assert.Equal(t, 1, result.Stats.DuplicatesRemoved)
	assert.Equal(t, map[string]int{"google_maps": 2, "yelp": 1}, result.Stats.Sources)

	var merged *model.BusinessRecord
	for i := range result.Leads {
		if result.Leads[i].Name == "ABC Consultants" {
			merged = &result.Leads[i]
		}
	}
	require.NotNil(t, merged)
	assert.Equal(t, "+971501112222", merged.Phone)
	assert.Equal(t, "info@abc.ae", merged.Email)
	assert.ElementsMatch(t, []string{"google_maps", "yelp"}, merged.DataSources)
	assert.Equal(t, 0.9, merged.Confidence)
	require.NotNil(t, merged.LeadScore)
}

func TestRun_SourcePriorityFixesOrder(t *testing.T) {
	// Both sources carry the same business; the priority source's name
	// must win the merge no matter which collector finishes first.
	primary := &fakeCollector{name: "google_maps", confidence: 0.9, records: []model.BusinessRecord{
		{Name: "Alpha Consulting", Phone: "+971501112222"},
	}}
	secondary := &fakeCollector{name: "yelp", confidence: 0.9, records: []model.BusinessRecord{
		{Name: "Alpha Consulting Inc", Phone: "0501112222"},
	}}

	cfg := DefaultConfig()
	cfg.SourcePriority = []string{"google_maps", "yelp"}

	for range 10 {
		agg := New(cfg, dedup.DefaultMatcherConfig(), scorer.DefaultConfig())
		// Register in the "wrong" order so priority has to correct it.
		agg.Register(secondary)
		agg.Register(primary)

		result, err := agg.Run(context.Background(), "alpha", "", Options{})
		require.NoError(t, err)
		require.Len(t, result.Leads, 1)
		assert.Equal(t, "Alpha Consulting", result.Leads[0].Name)
		assert.Equal(t, []string{"google_maps", "yelp"}, result.Leads[0].DataSources)
	}
}

func TestRun_SourcesFilterSkipsCollectors(t *testing.T) {
	wanted := &fakeCollector{name: "google_maps", confidence: 0.9, records: []model.BusinessRecord{
		{Name: "Wanted Co"},
	}}
	excluded := &fakeCollector{name: "yelp", confidence: 0.8, records: []model.BusinessRecord{
		{Name: "Excluded Co"},
	}}

	agg := newTestAggregator(wanted, excluded)
	result, err := agg.Run(context.Background(), "q", "", Options{Sources: []string{"google_maps"}})
	require.NoError(t, err)

	require.Len(t, result.Leads, 1)
	assert.Equal(t, "Wanted Co", result.Leads[0].Name)
	assert.NotContains(t, result.Stats.Sources, "yelp")
}

func TestRun_PartialSourceFailure(t *testing.T) {
	ok := &fakeCollector{name: "google_maps", confidence: 0.9, records: []model.BusinessRecord{
		{Name: "Survivor Co"},
	}}
	broken := &fakeCollector{name: "yelp", confidence: 0.8, err: eris.New("rate limited")}

	agg := newTestAggregator(ok, broken)
	result, err := agg.Run(context.Background(), "q", "", Options{})
	require.NoError(t, err)

	require.Len(t, result.Leads, 1)
	assert.Equal(t, "Survivor Co", result.Leads[0].Name)
	assert.Equal(t, 0, result.Stats.Sources["yelp"])
}

func TestRun_AllSourcesFailYieldsEmptyResult(t *testing.T) {
	agg := newTestAggregator(
		&fakeCollector{name: "a", err: eris.New("down")},
		&fakeCollector{name: "b", err: eris.New("down")},
	)
	result, err := agg.Run(context.Background(), "q", "", Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Leads)
}

func TestRun_DropsNamelessRecords(t *testing.T) {
	agg := newTestAggregator(&fakeCollector{name: "a", confidence: 0.5, records: []model.BusinessRecord{
		{Name: "Named Co"},
		{Name: "", Address: "somewhere"},
		{Name: "Research required"},
	}})

	result, err := agg.Run(context.Background(), "q", "", Options{})
	require.NoError(t, err)
	require.Len(t, result.Leads, 1)
	assert.Equal(t, 2, result.Stats.Dropped)
}

func TestRun_MaxResultsTruncatesAfterRanking(t *testing.T) {
	// Names are built from letter blocks so no two are anywhere near
	// the similarity threshold.
	var records []model.BusinessRecord
	for i := 0; i < 50; i++ {
		name := strings.Repeat(string(rune('a'+i%26)), 4) + " " + strings.Repeat(string(rune('k'+i/26)), 4)
		r := model.BusinessRecord{Name: name}
		if i%2 == 0 {
			r.Phone = fmt.Sprintf("+97150111%04d", i)
		}
		records = append(records, r)
	}

	agg := newTestAggregator(&fakeCollector{name: "a", confidence: 0.5, records: records})
	result, err := agg.Run(context.Background(), "q", "", Options{MaxResults: 40})
	require.NoError(t, err)

	require.Len(t, result.Leads, 40)
	assert.Equal(t, 50, result.Stats.TotalUnique)

	// Sorted descending by score; the truncated tail held the low scores.
	sorted := sort.SliceIsSorted(result.Leads, func(i, j int) bool {
		return result.Leads[i].LeadScore.TotalScore > result.Leads[j].LeadScore.TotalScore
	})
	assert.True(t, sorted)
	assert.NotEmpty(t, result.Leads[0].Phone)
}

func TestRun_MinScoreAndPriorityFilters(t *testing.T) {
	records := []model.BusinessRecord{
		{Name: "Hot Lead", Phone: "+971501112222", Email: "x@hot.ae", Website: "https://hot.ae", Rating: 4.8, ReviewCount: 200, Address: "A long address well over twenty five chars", Category: "legal"},
		{Name: "Cold Lead"},
	}
	agg := newTestAggregator(&fakeCollector{name: "a", confidence: 0.5, records: records})

	byScore, err := agg.Run(context.Background(), "q", "", Options{MinScore: 60})
	require.NoError(t, err)
	require.Len(t, byScore.Leads, 1)
	assert.Equal(t, "Hot Lead", byScore.Leads[0].Name)

	byPriority, err := agg.Run(context.Background(), "q", "", Options{MinPriority: model.PriorityHigh})
	require.NoError(t, err)
	require.Len(t, byPriority.Leads, 1)
	assert.Equal(t, "Hot Lead", byPriority.Leads[0].Name)

	// MinPriority Low filters nothing.
	all, err := agg.Run(context.Background(), "q", "", Options{MinPriority: model.PriorityLow})
	require.NoError(t, err)
	assert.Len(t, all.Leads, 2)
}

func TestRun_Enrichment(t *testing.T) {
	agg := newTestAggregator(&fakeCollector{name: "a", confidence: 0.5, records: []model.BusinessRecord{
		{Name: "Enrich Me"},
		{Name: "Me Too"},
	}})
	agg.RegisterEnricher(&fakeEnricher{name: "classifier"})
	agg.limiter.SetLimit(1000) // keep the test fast

	result, err := agg.Run(context.Background(), "q", "", Options{Enrich: true})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.Enriched)
	assert.Equal(t, 0, result.Stats.EnrichFailed)
	for _, lead := range result.Leads {
		require.NotNil(t, lead.Enrichment)
		assert.Equal(t, "SME", lead.Enrichment.AI.BusinessSize)
	}
}

func TestRun_EnrichmentFailureIsPartial(t *testing.T) {
	agg := newTestAggregator(&fakeCollector{name: "a", confidence: 0.5, records: []model.BusinessRecord{
		{Name: "Still Here"},
	}})
	agg.RegisterEnricher(&fakeEnricher{name: "broken", err: eris.New("api down")})
	agg.limiter.SetLimit(1000)

	result, err := agg.Run(context.Background(), "q", "", Options{Enrich: true})
	require.NoError(t, err)

	require.Len(t, result.Leads, 1)
	assert.Equal(t, 1, result.Stats.EnrichFailed)
	require.NotNil(t, result.Leads[0].LeadScore)
}

func TestRun_EnrichSkippedWithoutFlag(t *testing.T) {
	agg := newTestAggregator(&fakeCollector{name: "a", confidence: 0.5, records: []model.BusinessRecord{
		{Name: "Plain Co"},
	}})
	agg.RegisterEnricher(&fakeEnricher{name: "classifier"})

	result, err := agg.Run(context.Background(), "q", "", Options{})
	require.NoError(t, err)
	assert.Nil(t, result.Leads[0].Enrichment)
}

func TestPriorityOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SourcePriority = []string{"c", "a"}
	agg := New(cfg, dedup.DefaultMatcherConfig(), scorer.DefaultConfig())
	agg.Register(&fakeCollector{name: "a"})
	agg.Register(&fakeCollector{name: "b"})
	agg.Register(&fakeCollector{name: "c"})

	// c and a take their priority slots; b trails in registration order.
	assert.Equal(t, []int{2, 0, 1}, agg.priorityOrder())
}
