// internal/workers/assessment/match-providers/handler_test.go
package matchproviders

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"valyntra-workers/internal/common/errors"
	"valyntra-workers/internal/common/logger"
	"valyntra-workers/internal/matching"
	"valyntra-workers/internal/models"
	"valyntra-workers/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingProviders struct{}

func (failingProviders) ActiveProviders(context.Context) ([]models.Provider, error) {
	return nil, stderrors.New("pq: connection refused")
}

func opportunities() []models.Opportunity {
	return []models.Opportunity{
		{ID: "o1", CompanyID: "company-1", UseCase: models.UseCase{Name: "Capacity & Demand Forecasting", Tag: "ml", Impact: models.ImpactHigh, Effort: models.EffortMedium, ROI: models.ROIStrategic}, Rank: 1},
		{ID: "o2", CompanyID: "company-1", UseCase: models.UseCase{Name: "Revenue Cycle Automation", Tag: "automation", Impact: models.ImpactMedium, Effort: models.EffortLow, ROI: models.ROIQuickWin}, Rank: 2},
	}
}

func TestHandler_Execute(t *testing.T) {
	providers := store.NewMemoryStore()
	providers.PutProvider(models.Provider{ID: "p-ml", Name: "ML Co", CapabilityTags: []string{"ML"}, IndustriesServed: []string{"healthcare"}, Size: models.SizeEnterprise, QualificationScore: 30, Active: true})
	providers.PutProvider(models.Provider{ID: "p-auto", Name: "Auto Co", CapabilityTags: []string{"automation"}, IndustriesServed: []string{"Retail"}, Size: models.SizeSMB, QualificationScore: 15, Active: true})
	providers.PutProvider(models.Provider{ID: "p-off", Name: "Retired", CapabilityTags: []string{"ml"}, Size: models.SizeEnterprise, QualificationScore: 30, Active: false})

	h := NewHandler(&Config{}, matching.NewEngine(3, matching.NewRandomSource(7)), providers, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{
		Company:       models.Company{ID: "company-1", Industry: "Healthcare"},
		Opportunities: opportunities(),
	})
	require.NoError(t, err)

	byPair := make(map[string]models.Match)
	for _, m := range out.Matches {
		byPair[m.OpportunityID+"/"+m.ProviderID] = m
		assert.NotEqual(t, "p-off", m.ProviderID)
	}

	assert.Equal(t, 100.0, byPair["o1/p-ml"].WeightedScore)
	assert.Equal(t, 55.0, byPair["o2/p-auto"].WeightedScore)
	// industry points alone still count
	assert.Equal(t, 60.0, byPair["o2/p-ml"].WeightedScore)
	// qualification points alone still count
	assert.Equal(t, 15.0, byPair["o1/p-auto"].WeightedScore)

	assert.Equal(t, len(out.Matches), out.MatchCount)
	assert.Equal(t, models.TotalPipelineValue(out.Matches), out.TotalPipelineValue)
}

func TestHandler_Execute_ProviderFailure(t *testing.T) {
	h := NewHandler(&Config{}, matching.NewEngine(3, matching.NewRandomSource(7)), failingProviders{}, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), &Input{Company: models.Company{ID: "company-1"}, Opportunities: opportunities()})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeProviderSnapshotFailed))

	stdErr, _ := errors.AsStandardError(err)
	assert.True(t, stdErr.Retryable)
}

func TestHandler_Execute_NoOpportunities(t *testing.T) {
	h := NewHandler(&Config{}, matching.NewEngine(3, nil), store.NewMemoryStore(), logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{Company: models.Company{ID: "company-1"}})
	require.NoError(t, err)
	assert.NotNil(t, out.Matches)
	assert.Equal(t, 0, out.MatchCount)
}

func TestHandler_Execute_InvalidOpportunities(t *testing.T) {
	providers := store.NewMemoryStore()
	providers.PutProvider(models.Provider{ID: "p-ml", Name: "ML Co", CapabilityTags: []string{"ml"}, Size: models.SizeEnterprise, QualificationScore: 30, Active: true})
	h := NewHandler(&Config{}, matching.NewEngine(3, matching.NewRandomSource(7)), providers, logger.NewNoOpLogger())

	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"missing impact", `[{"id":"o1","tag":"ml","rank":1}]`, "opportunities[0].impact"},
		{"missing id", `[{"tag":"ml","impact":"High","rank":1}]`, "opportunities[0].id"},
		{"missing tag", `[{"id":"o1","impact":"High","rank":1},{"id":"o2","impact":"Low","rank":2}]`, "opportunities[0].tag"},
		{"second entry", `[{"id":"o1","tag":"ml","impact":"High","rank":1},{"id":"o2","tag":"ml","rank":2}]`, "opportunities[1].impact"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opps []models.Opportunity
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &opps))

			out, err := h.Execute(context.Background(), &Input{
				Company:       models.Company{ID: "company-1", Industry: "Healthcare"},
				Opportunities: opps,
			})
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, errors.HasCode(err, errors.ErrCodeAssessmentValidationFailed))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
