package store

import (
	"context"
	"database/sql"
	"sort"

	"github.com/lib/pq"

	"valyntra-workers/internal/common/errors"
	"valyntra-workers/internal/models"
)

const selectActiveProvidersSQL = `
	SELECT id, name, provider_type, capability_tags, industries_served, delivery_model,
	       typical_project_size, capacity, qualification_score, website, is_active
	FROM providers
	WHERE is_active = TRUE
	ORDER BY id`

const upsertProviderSQL = `
	INSERT INTO providers (id, name, provider_type, capability_tags, industries_served, delivery_model,
	                       typical_project_size, capacity, qualification_score, website, is_active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		provider_type = EXCLUDED.provider_type,
		capability_tags = EXCLUDED.capability_tags,
		industries_served = EXCLUDED.industries_served,
		delivery_model = EXCLUDED.delivery_model,
		typical_project_size = EXCLUDED.typical_project_size,
		capacity = EXCLUDED.capacity,
		qualification_score = EXCLUDED.qualification_score,
		website = EXCLUDED.website,
		is_active = EXCLUDED.is_active`

const deactivateProviderSQL = `UPDATE providers SET is_active = FALSE WHERE id = $1`

// ProviderAdmin maintains the provider catalog. Deactivation is a soft
// delete: matches already committed keep pointing at the provider.
type ProviderAdmin interface {
	UpsertProvider(ctx context.Context, p models.Provider) error
	DeactivateProvider(ctx context.Context, id string) error
}

// PostgresProviderSource reads the provider catalog. A single statement is a
// consistent snapshot under Postgres MVCC.
type PostgresProviderSource struct {
	db *sql.DB
}

func NewPostgresProviderSource(db *sql.DB) *PostgresProviderSource {
	return &PostgresProviderSource{db: db}
}

func (s *PostgresProviderSource) ActiveProviders(ctx context.Context) ([]models.Provider, error) {
	rows, err := s.db.QueryContext(ctx, selectActiveProvidersSQL)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("select_active_providers", err)
	}
	defer rows.Close()

	providers := make([]models.Provider, 0)
	for rows.Next() {
		var p models.Provider
		var providerType, deliveryModel, size, capacity, site sql.NullString
		if err := rows.Scan(
			&p.ID, &p.Name, &providerType,
			pq.Array(&p.CapabilityTags), pq.Array(&p.IndustriesServed),
			&deliveryModel, &size, &capacity, &p.QualificationScore, &site, &p.Active,
		); err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan_provider", err)
		}
		p.ProviderType = providerType.String
		p.DeliveryModel = deliveryModel.String
		p.Size = models.ParseSizeClass(size.String)
		p.Capacity = capacity.String
		p.Website = site.String
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("select_active_providers", err)
	}
	return providers, nil
}

func (s *PostgresProviderSource) UpsertProvider(ctx context.Context, p models.Provider) error {
	size := ""
	if p.Size != models.SizeUnrecognized {
		size = p.Size.String()
	}
	_, err := s.db.ExecContext(ctx, upsertProviderSQL,
		p.ID, p.Name, nullString(p.ProviderType),
		pq.Array(nonNil(p.CapabilityTags)), pq.Array(nonNil(p.IndustriesServed)),
		nullString(p.DeliveryModel), nullString(size), nullString(p.Capacity),
		p.QualificationScore, nullString(p.Website), p.Active,
	)
	if err != nil {
		return errors.NewQueryExecutionFailedError("upsert_provider", err)
	}
	return nil
}

// DeactivateProvider is idempotent for known providers and reports
// RESOURCE_NOT_FOUND for unknown ids.
func (s *PostgresProviderSource) DeactivateProvider(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, deactivateProviderSQL, id)
	if err != nil {
		return errors.NewQueryExecutionFailedError("deactivate_provider", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewQueryExecutionFailedError("deactivate_provider", err)
	}
	if n == 0 {
		return errors.NewResourceNotFoundError("providers", "provider "+id)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

func sortProviders(ps []models.Provider) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
}
