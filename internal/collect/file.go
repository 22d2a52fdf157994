package collect

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// FileCollector reads records from a JSON or CSV export produced by an
// external scraper run. The format is picked by file extension.
type FileCollector struct {
	name       string
	confidence float64
	path       string
}

// NewFileCollector creates a collector over a local export file.
func NewFileCollector(name string, confidence float64, path string) *FileCollector {
	return &FileCollector{name: name, confidence: confidence, path: path}
}

func (c *FileCollector) Name() string        { return c.name }
func (c *FileCollector) Confidence() float64 { return c.confidence }

// Search loads the whole file; query and location are recorded by the
// orchestrator, not used to filter, since the export was already
// produced for a specific search.
func (c *FileCollector) Search(_ context.Context, _, _ string, opts SearchOpts) ([]model.BusinessRecord, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, eris.Wrapf(err, "collect: open %s", c.path)
	}
	defer f.Close()

	var records []model.BusinessRecord
	if strings.HasSuffix(strings.ToLower(c.path), ".csv") {
		records, err = readCSV(f)
	} else {
		records, err = readJSON(f)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "collect: parse %s", c.path)
	}

	return capResults(stamp(records, c.name, c.confidence), opts.MaxResults), nil
}

func readJSON(r io.Reader) ([]model.BusinessRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var records []model.BusinessRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	// Some exports wrap the list in an envelope.
	var envelope struct {
		Leads   []model.BusinessRecord `json:"leads"`
		Results []model.BusinessRecord `json:"results"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Leads) > 0 {
		return envelope.Leads, nil
	}
	return envelope.Results, nil
}

// readCSV maps header-named columns onto record fields. Unknown
// columns are ignored; missing optional columns degrade to empty.
func readCSV(r io.Reader) ([]model.BusinessRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}

	field := func(row []string, names ...string) string {
		for _, n := range names {
			if i, ok := col[n]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
		}
		return ""
	}

	var records []model.BusinessRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		rec := model.BusinessRecord{
			Name:     field(row, "name", "business name", "company"),
			Address:  field(row, "address", "location"),
			Phone:    field(row, "phone", "phone number"),
			Email:    field(row, "email"),
			Website:  field(row, "website", "url"),
			Category: field(row, "category", "industry"),
		}
		if v := field(row, "rating"); v != "" {
			rec.Rating, _ = strconv.ParseFloat(v, 64)
		}
		if v := field(row, "review_count", "reviews", "review count"); v != "" {
			rec.ReviewCount, _ = strconv.Atoi(v)
		}
		if lat := field(row, "lat", "latitude"); lat != "" {
			if lng := field(row, "lng", "longitude"); lng != "" {
				la, errLa := strconv.ParseFloat(lat, 64)
				ln, errLn := strconv.ParseFloat(lng, 64)
				if errLa == nil && errLn == nil {
					rec.Coordinates = &model.Coordinates{Lat: la, Lng: ln}
				}
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
