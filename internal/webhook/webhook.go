// Package webhook delivers ranked lead lists to an HTTP endpoint in
// bounded-size batches. Each batch is posted independently with its
// own retry budget; one failed batch never blocks the rest.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/resilience"
)

// Config configures webhook delivery.
type Config struct {
	URL         string        `yaml:"url" mapstructure:"url"`
	BatchSize   int           `yaml:"batch_size" mapstructure:"batch_size"`
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Payload is one batch as posted to the endpoint.
type Payload struct {
	RunID        string                 `json:"run_id"`
	Timestamp    time.Time              `json:"timestamp"`
	Query        string                 `json:"query"`
	Location     string                 `json:"location"`
	BatchNumber  int                    `json:"batch_number"`
	TotalBatches int                    `json:"total_batches"`
	BatchSize    int                    `json:"batch_size"`
	Leads        []model.BusinessRecord `json:"leads"`
}

// Summary reports delivery outcome per run.
type Summary struct {
	RunID         string `json:"run_id"`
	TotalLeads    int    `json:"total_leads"`
	TotalBatches  int    `json:"total_batches"`
	SentBatches   int    `json:"sent_batches"`
	FailedBatches int    `json:"failed_batches"`
}

// Sender posts lead batches to a configured webhook.
type Sender struct {
	cfg    Config
	client *http.Client
}

// New creates a Sender.
func New(cfg Config) *Sender {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Sender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Send splits the lead list into batches and posts each one. It
// returns an error only when the webhook URL is missing or every
// batch failed; partial failure is reported through the Summary.
func (s *Sender) Send(ctx context.Context, query, location string, leads []model.BusinessRecord) (*Summary, error) {
	if s.cfg.URL == "" {
		return nil, eris.New("webhook: no URL configured")
	}

	runID := uuid.New().String()
	total := (len(leads) + s.cfg.BatchSize - 1) / s.cfg.BatchSize
	summary := &Summary{RunID: runID, TotalLeads: len(leads), TotalBatches: total}
	log := zap.L().With(
		zap.String("component", "webhook"),
		zap.String("run_id", runID),
	)

	for i := 0; i < len(leads); i += s.cfg.BatchSize {
		end := min(i+s.cfg.BatchSize, len(leads))
		batchNumber := i/s.cfg.BatchSize + 1

		payload := Payload{
			RunID:        runID,
			Timestamp:    time.Now().UTC(),
			Query:        query,
			Location:     location,
			BatchNumber:  batchNumber,
			TotalBatches: total,
			BatchSize:    end - i,
			Leads:        leads[i:end],
		}

		err := resilience.Do(ctx, resilience.RetryConfig{MaxAttempts: s.cfg.MaxAttempts}, func(ctx context.Context) error {
			return s.post(ctx, payload)
		})
		if err != nil {
			summary.FailedBatches++
			log.Warn("webhook: batch delivery failed",
				zap.Int("batch", batchNumber),
				zap.Int("total", total),
				zap.Error(err),
			)
			continue
		}
		summary.SentBatches++
		log.Debug("webhook: batch delivered",
			zap.Int("batch", batchNumber),
			zap.Int("total", total),
		)
	}

	log.Info("webhook: delivery complete",
		zap.Int("sent", summary.SentBatches),
		zap.Int("failed", summary.FailedBatches),
	)

	if total > 0 && summary.SentBatches == 0 {
		return summary, eris.Errorf("webhook: all %d batches failed", total)
	}
	return summary, nil
}

func (s *Sender) post(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "webhook: marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "webhook: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "webhook: post")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := eris.Errorf("webhook: endpoint returned %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}
	return nil
}
