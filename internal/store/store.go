// Package store persists completed search runs and their ranked leads.
package store

import (
	"context"
	"time"

	"github.com/sells-group/leadgen-cli/internal/aggregate"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// Run is one persisted aggregation run.
type Run struct {
	ID        string          `json:"id"`
	Query     string          `json:"query"`
	Location  string          `json:"location"`
	LeadCount int             `json:"lead_count"`
	Stats     aggregate.Stats `json:"stats"`
	CreatedAt time.Time       `json:"created_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Query  string `json:"query,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for search runs.
type Store interface {
	SaveRun(ctx context.Context, result *aggregate.Result) (*Run, error)
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)
	GetLeads(ctx context.Context, runID string) ([]model.BusinessRecord, error)

	Migrate(ctx context.Context) error
	Close() error
}
