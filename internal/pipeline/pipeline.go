// Package pipeline runs score, opportunity generation and matching for one
// company as a single unit and commits the result atomically.
package pipeline

import (
	"context"

	"valyntra-workers/internal/models"
)

// Store commits a run's output as one replace-set and serves the active set.
type Store interface {
	Commit(ctx context.Context, result models.PipelineResult) error
	Snapshot(ctx context.Context, companyID string) (models.CompanySnapshot, error)
}

// ProviderSource returns a consistent snapshot of active providers.
type ProviderSource interface {
	ActiveProviders(ctx context.Context) ([]models.Provider, error)
}

// Sink receives committed results. Deliveries are best-effort.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, company models.Company, result models.PipelineResult) error
}
