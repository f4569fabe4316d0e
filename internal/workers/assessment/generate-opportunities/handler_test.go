// internal/workers/assessment/generate-opportunities/handler_test.go
package generateopportunities

import (
	"context"
	"encoding/json"
	"testing"

	"valyntra-workers/internal/common/errors"
	"valyntra-workers/internal/common/logger"
	"valyntra-workers/internal/models"
	"valyntra-workers/internal/opportunity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	gen := opportunity.NewGenerator(opportunity.DefaultCatalog(), opportunity.DefaultLimit)
	return NewHandler(&Config{}, gen, logger.NewTestLogger(t))
}

func TestHandler_Execute_FromJobVariables(t *testing.T) {
	vars := `{
		"company": {"id": "company-1", "name": "Acme", "industry": "manufacturing"},
		"score": {"id": "s1", "assessmentId": "a1", "companyId": "company-1", "overall": 82.5, "tier": "Ready"}
	}`
	var input Input
	require.NoError(t, json.Unmarshal([]byte(vars), &input))

	out, err := newTestHandler(t).Execute(context.Background(), &input)
	require.NoError(t, err)

	require.Equal(t, 4, out.OpportunityCount)
	assert.Equal(t, "Demand Forecasting & Inventory Planning", out.Opportunities[0].Name)
	for i, o := range out.Opportunities {
		assert.Equal(t, i+1, o.Rank)
		assert.Equal(t, "company-1", o.CompanyID)
	}
}

func TestHandler_Execute_UnknownIndustryFallsBack(t *testing.T) {
	out, err := newTestHandler(t).Execute(context.Background(), &Input{
		Company: models.Company{ID: "company-1", Industry: "Aerospace"},
		Score:   models.Score{Overall: 30, Tier: models.TierEarlyStage},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, out.OpportunityCount)
	assert.Equal(t, "Process & Workflow Automation", out.Opportunities[0].Name)
}

func TestHandler_Execute_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input Input
	}{
		{"no company", Input{Score: models.Score{Overall: 50, Tier: models.TierDeveloping}}},
		{"no score", Input{Company: models.Company{ID: "company-1"}}},
		{"score out of range", Input{Company: models.Company{ID: "company-1"}, Score: models.Score{Overall: 120, Tier: models.TierReady}}},
	}

	h := newTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Execute(context.Background(), &tt.input)
			assert.True(t, errors.HasCode(err, errors.ErrCodeAssessmentValidationFailed))
		})
	}
}

func TestInput_RejectsUnknownTier(t *testing.T) {
	var input Input
	err := json.Unmarshal([]byte(`{"company":{"id":"c"},"score":{"overall":50,"tier":"Almost"}}`), &input)
	assert.Error(t, err)
}
