package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/resilience"
)

// HTTPCollectorConfig configures a places-style JSON search API source.
type HTTPCollectorConfig struct {
	Name       string        `yaml:"name" mapstructure:"name"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint"`
	APIKey     string        `yaml:"api_key" mapstructure:"api_key"`
	Confidence float64       `yaml:"confidence" mapstructure:"confidence"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// RatePerSec throttles requests to the source. Default 1/s.
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// HTTPCollector queries a JSON search API and maps its results to
// BusinessRecords.
type HTTPCollector struct {
	cfg     HTTPCollectorConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPCollector creates an API-backed collector.
func NewHTTPCollector(cfg HTTPCollectorConfig) *HTTPCollector {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	if cfg.Confidence <= 0 {
		cfg.Confidence = 0.8
	}
	return &HTTPCollector{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
	}
}

func (c *HTTPCollector) Name() string        { return c.cfg.Name }
func (c *HTTPCollector) Confidence() float64 { return c.cfg.Confidence }

// apiResult is the wire shape of one listing in the search response.
type apiResult struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	Website     string  `json:"website"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	Category    string  `json:"category"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// Search queries the API, retrying transient failures.
func (c *HTTPCollector) Search(ctx context.Context, query, location string, opts SearchOpts) ([]model.BusinessRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrapf(err, "collect: %s rate wait", c.cfg.Name)
	}

	results, err := resilience.DoVal(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) ([]apiResult, error) {
		return c.query(ctx, query, location, opts.MaxResults)
	})
	if err != nil {
		return nil, err
	}

	records := make([]model.BusinessRecord, 0, len(results))
	for _, res := range results {
		rec := model.BusinessRecord{
			Name:        res.Name,
			Address:     res.Address,
			Phone:       res.Phone,
			Email:       res.Email,
			Website:     res.Website,
			Rating:      res.Rating,
			ReviewCount: res.ReviewCount,
			Category:    res.Category,
		}
		if res.Lat != 0 || res.Lng != 0 {
			rec.Coordinates = &model.Coordinates{Lat: res.Lat, Lng: res.Lng}
		}
		records = append(records, rec)
	}

	zap.L().Debug("collect: api search complete",
		zap.String("source", c.cfg.Name),
		zap.String("query", query),
		zap.Int("results", len(records)),
	)

	return capResults(stamp(records, c.cfg.Name, c.cfg.Confidence), opts.MaxResults), nil
}

func (c *HTTPCollector) query(ctx context.Context, query, location string, limit int) ([]apiResult, error) {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return nil, eris.Wrapf(err, "collect: %s endpoint", c.cfg.Name)
	}
	q := u.Query()
	q.Set("query", query)
	q.Set("location", location)
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, eris.Wrapf(err, "collect: %s build request", c.cfg.Name)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "collect: %s request", c.cfg.Name)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := eris.Errorf("collect: %s returned %d: %s", c.cfg.Name, resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var payload struct {
		Results []apiResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, eris.Wrapf(err, "collect: %s decode response", c.cfg.Name)
	}
	return payload.Results, nil
}
