package collect

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileCollector_JSONArray(t *testing.T) {
	path := writeTemp(t, "leads.json", `[
		{"name": "ABC Consultants", "phone": "+971501112222", "rating": 4.2},
		{"name": "Gulf Trading House", "email": "info@gulf.ae"}
	]`)

	c := NewFileCollector("google_maps", 0.9, path)
	records, err := c.Search(context.Background(), "", "", SearchOpts{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "ABC Consultants", records[0].Name)
	assert.Equal(t, 4.2, records[0].Rating)
	assert.Equal(t, "google_maps", records[0].DataSource)
	assert.Equal(t, []string{"google_maps"}, records[0].DataSources)
	assert.Equal(t, 0.9, records[0].Confidence)
}

func TestFileCollector_JSONEnvelope(t *testing.T) {
	path := writeTemp(t, "export.json", `{"leads": [{"name": "Enveloped Co"}]}`)

	c := NewFileCollector("scraper", 0.7, path)
	records, err := c.Search(context.Background(), "", "", SearchOpts{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Enveloped Co", records[0].Name)
}

func TestFileCollector_JSONResultsEnvelope(t *testing.T) {
	path := writeTemp(t, "export.json", `{"results": [{"name": "Result Co"}]}`)

	c := NewFileCollector("scraper", 0.7, path)
	records, err := c.Search(context.Background(), "", "", SearchOpts{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Result Co", records[0].Name)
}

func TestFileCollector_CSV(t *testing.T) {
	path := writeTemp(t, "leads.csv",
		"Name,Address,Phone,Rating,Reviews,Lat,Lng\n"+
			"ABC Consultants,\"Marina Plaza, Dubai\",+971501112222,4.2,37,25.08,55.14\n"+
			"Gulf Trading House,,,,,\n")

	c := NewFileCollector("csv_export", 0.6, path)
	records, err := c.Search(context.Background(), "", "", SearchOpts{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	r := records[0]
	assert.Equal(t, "ABC Consultants", r.Name)
	assert.Equal(t, "Marina Plaza, Dubai", r.Address)
	assert.Equal(t, 4.2, r.Rating)
	assert.Equal(t, 37, r.ReviewCount)
	require.NotNil(t, r.Coordinates)
	assert.Equal(t, 25.08, r.Coordinates.Lat)

	assert.Equal(t, "Gulf Trading House", records[1].Name)
	assert.Nil(t, records[1].Coordinates)
}

func TestFileCollector_CSVAlternateHeaders(t *testing.T) {
	path := writeTemp(t, "leads.csv",
		"Company,Location,Phone Number,URL,Industry\n"+
			"Falcon Clinic,Jumeirah,+97144440000,https://falcon.ae,Healthcare\n")

	c := NewFileCollector("csv_export", 0.6, path)
	records, err := c.Search(context.Background(), "", "", SearchOpts{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "Falcon Clinic", r.Name)
	assert.Equal(t, "Jumeirah", r.Address)
	assert.Equal(t, "+97144440000", r.Phone)
	assert.Equal(t, "https://falcon.ae", r.Website)
	assert.Equal(t, "Healthcare", r.Category)
}

func TestFileCollector_SanitizesPlaceholders(t *testing.T) {
	path := writeTemp(t, "leads.json", `[{"name": "Half Known Co", "phone": "Research required", "email": "N/A"}]`)

	c := NewFileCollector("scraper", 0.5, path)
	records, err := c.Search(context.Background(), "", "", SearchOpts{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Phone)
	assert.Empty(t, records[0].Email)
}

func TestFileCollector_MaxResults(t *testing.T) {
	path := writeTemp(t, "leads.json", `[{"name": "A"}, {"name": "B"}, {"name": "C"}]`)

	c := NewFileCollector("scraper", 0.5, path)
	records, err := c.Search(context.Background(), "", "", SearchOpts{MaxResults: 2})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestFileCollector_MissingFile(t *testing.T) {
	c := NewFileCollector("scraper", 0.5, filepath.Join(t.TempDir(), "absent.json"))
	_, err := c.Search(context.Background(), "", "", SearchOpts{})
	assert.Error(t, err)
}

func TestFileCollector_MalformedJSON(t *testing.T) {
	path := writeTemp(t, "bad.json", `{not json`)
	c := NewFileCollector("scraper", 0.5, path)
	_, err := c.Search(context.Background(), "", "", SearchOpts{})
	assert.Error(t, err)
}
