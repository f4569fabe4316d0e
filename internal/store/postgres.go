package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"valyntra-workers/internal/common/database"
	"valyntra-workers/internal/common/errors"
	"valyntra-workers/internal/models"
)

const (
	lockCompanySQL = `SELECT pg_advisory_xact_lock(hashtext($1))`

	deleteScoreSQL = `DELETE FROM scores WHERE assessment_id = $1`
	insertScoreSQL = `
		INSERT INTO scores (id, assessment_id, company_id, overall_score, data_maturity_score,
			process_automation_score, leadership_alignment_score, technical_infrastructure_score,
			recommendation_level, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	deleteMatchesSQL       = `DELETE FROM matches WHERE company_id = $1`
	deleteOpportunitiesSQL = `DELETE FROM opportunities WHERE company_id = $1`

	insertOpportunitySQL = `
		INSERT INTO opportunities (id, company_id, use_case, use_case_tag, impact_estimate,
			implementation_effort, roi_classification, priority, rank, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	insertMatchSQL = `
		INSERT INTO matches (id, company_id, opportunity_id, provider_id, provider_name,
			capability_match, industry_match, weighted_score, est_pilot_value, stage, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	selectActiveScoreSQL = `
		SELECT id, assessment_id, company_id, overall_score, data_maturity_score,
			process_automation_score, leadership_alignment_score, technical_infrastructure_score,
			recommendation_level, calculated_at
		FROM scores
		WHERE company_id = $1
		ORDER BY calculated_at DESC
		LIMIT 1`

	selectOpportunitiesSQL = `
		SELECT id, company_id, use_case, use_case_tag, impact_estimate, implementation_effort,
			roi_classification, priority, rank, generated_at
		FROM opportunities
		WHERE company_id = $1
		ORDER BY rank`

	selectMatchesSQL = `
		SELECT id, company_id, opportunity_id, provider_id, provider_name, capability_match,
			industry_match, weighted_score, est_pilot_value, stage, created_at
		FROM matches
		WHERE company_id = $1
		ORDER BY weighted_score DESC, provider_id`
)

// PostgresStore commits a pipeline result in a single transaction. The
// advisory lock serializes commits for one company even across processes
// that bypass the pipeline lock.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Commit(ctx context.Context, r models.PipelineResult) error {
	if err := checkResult(r); err != nil {
		return err
	}

	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, lockCompanySQL, r.CompanyID); err != nil {
			return fmt.Errorf("lock company %s: %w", r.CompanyID, err)
		}

		sc := r.Score
		if _, err := tx.ExecContext(ctx, deleteScoreSQL, sc.AssessmentID); err != nil {
			return fmt.Errorf("delete score: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertScoreSQL,
			sc.ID, sc.AssessmentID, sc.CompanyID, sc.Overall,
			sc.Categories.DataMaturity, sc.Categories.ProcessAutomation,
			sc.Categories.LeadershipAlignment, sc.Categories.TechnicalInfrastructure,
			sc.Tier.String(), sc.CalculatedAt,
		); err != nil {
			return fmt.Errorf("insert score: %w", err)
		}

		// matches reference opportunities, so they go first
		if _, err := tx.ExecContext(ctx, deleteMatchesSQL, r.CompanyID); err != nil {
			return fmt.Errorf("delete matches: %w", err)
		}
		if _, err := tx.ExecContext(ctx, deleteOpportunitiesSQL, r.CompanyID); err != nil {
			return fmt.Errorf("delete opportunities: %w", err)
		}

		for _, o := range r.Opportunities {
			if _, err := tx.ExecContext(ctx, insertOpportunitySQL,
				o.ID, o.CompanyID, o.Name, o.Tag, o.Impact.String(), o.Effort.String(),
				o.ROI.String(), o.Priority, o.Rank, o.GeneratedAt,
			); err != nil {
				return fmt.Errorf("insert opportunity %s: %w", o.ID, err)
			}
		}

		for _, m := range r.Matches {
			if _, err := tx.ExecContext(ctx, insertMatchSQL,
				m.ID, m.CompanyID, m.OpportunityID, m.ProviderID, m.ProviderName,
				m.CapabilityMatch, m.IndustryMatch, m.WeightedScore, m.EstPilotValue,
				m.Stage.String(), m.CreatedAt,
			); err != nil {
				return fmt.Errorf("insert match %s: %w", m.ID, err)
			}
		}
		return nil
	})
}

// Snapshot reads the company's active state inside one repeatable-read
// transaction so the three reads agree with each other.
func (s *PostgresStore) Snapshot(ctx context.Context, companyID string) (models.CompanySnapshot, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return models.CompanySnapshot{}, errors.NewDatabaseConnectionFailedError(err)
	}
	defer func() { _ = tx.Rollback() }()

	snap := models.CompanySnapshot{CompanyID: companyID}

	score, err := scanScore(tx.QueryRowContext(ctx, selectActiveScoreSQL, companyID))
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
	case err != nil:
		return models.CompanySnapshot{}, errors.NewQueryExecutionFailedError("select_active_score", err)
	default:
		snap.Score = &score
	}

	if snap.Opportunities, err = queryOpportunities(ctx, tx, companyID); err != nil {
		return models.CompanySnapshot{}, errors.NewQueryExecutionFailedError("select_opportunities", err)
	}
	if snap.Matches, err = queryMatches(ctx, tx, companyID); err != nil {
		return models.CompanySnapshot{}, errors.NewQueryExecutionFailedError("select_matches", err)
	}

	if snap.Score == nil && len(snap.Opportunities) == 0 && len(snap.Matches) == 0 {
		return models.CompanySnapshot{}, errors.NewResourceNotFoundError("company snapshot", companyID)
	}
	return snap, nil
}

func scanScore(row *sql.Row) (models.Score, error) {
	var sc models.Score
	var tier string
	if err := row.Scan(
		&sc.ID, &sc.AssessmentID, &sc.CompanyID, &sc.Overall,
		&sc.Categories.DataMaturity, &sc.Categories.ProcessAutomation,
		&sc.Categories.LeadershipAlignment, &sc.Categories.TechnicalInfrastructure,
		&tier, &sc.CalculatedAt,
	); err != nil {
		return models.Score{}, err
	}

	var err error
	if sc.Tier, err = models.ParseTier(tier); err != nil {
		return models.Score{}, err
	}
	return sc, nil
}

func queryOpportunities(ctx context.Context, tx *sql.Tx, companyID string) ([]models.Opportunity, error) {
	rows, err := tx.QueryContext(ctx, selectOpportunitiesSQL, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Opportunity, 0)
	for rows.Next() {
		var o models.Opportunity
		var impact, effort, roi string
		if err := rows.Scan(
			&o.ID, &o.CompanyID, &o.Name, &o.Tag, &impact, &effort, &roi,
			&o.Priority, &o.Rank, &o.GeneratedAt,
		); err != nil {
			return nil, err
		}
		if o.Impact, err = models.ParseImpact(impact); err != nil {
			return nil, err
		}
		if o.Effort, err = models.ParseEffort(effort); err != nil {
			return nil, err
		}
		if o.ROI, err = models.ParseROI(roi); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func queryMatches(ctx context.Context, tx *sql.Tx, companyID string) ([]models.Match, error) {
	rows, err := tx.QueryContext(ctx, selectMatchesSQL, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		var stage string
		if err := rows.Scan(
			&m.ID, &m.CompanyID, &m.OpportunityID, &m.ProviderID, &m.ProviderName,
			&m.CapabilityMatch, &m.IndustryMatch, &m.WeightedScore, &m.EstPilotValue,
			&stage, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		if m.Stage, err = models.ParseMatchStage(stage); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
