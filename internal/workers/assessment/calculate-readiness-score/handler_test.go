// internal/workers/assessment/calculate-readiness-score/handler_test.go
package calculatereadinessscore

import (
	"context"
	"encoding/json"
	"testing"

	"valyntra-workers/internal/common/config"
	"valyntra-workers/internal/common/errors"
	"valyntra-workers/internal/common/logger"
	"valyntra-workers/internal/models"
	"valyntra-workers/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(ConfigFrom(config.WorkerConfig{}), scoring.NewCalculator(scoring.DefaultWeights()), logger.NewTestLogger(t))
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name    string
		ratings models.Ratings
		overall float64
		tier    string
	}{
		{"all fives", models.Ratings{DataMaturity: 5, ProcessAutomation: 5, LeadershipAlignment: 5, TechnicalInfrastructure: 5}, 100, "Ready"},
		{"all ones", models.Ratings{DataMaturity: 1, ProcessAutomation: 1, LeadershipAlignment: 1, TechnicalInfrastructure: 1}, 0, "Early Stage"},
		{"all threes", models.Ratings{DataMaturity: 3, ProcessAutomation: 3, LeadershipAlignment: 3, TechnicalInfrastructure: 3}, 50, "Developing"},
	}

	h := newTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Execute(context.Background(), &Input{Assessment: models.Assessment{
				ID:        "assessment-1",
				CompanyID: "company-1",
				Ratings:   tt.ratings,
			}})
			require.NoError(t, err)

			assert.Equal(t, tt.overall, out.Overall)
			assert.Equal(t, tt.tier, out.Tier)
			assert.Equal(t, "assessment-1", out.Score.AssessmentID)
			assert.NotEmpty(t, out.Score.ID)
		})
	}
}

func TestHandler_Execute_OutOfRange(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{Assessment: models.Assessment{
		ID:      "assessment-1",
		Ratings: models.Ratings{DataMaturity: 3, ProcessAutomation: 0, LeadershipAlignment: 3, TechnicalInfrastructure: 3},
	}})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInputRange))

	bpmn := errors.ConvertToBPMNError(errors.Normalize(err))
	assert.Equal(t, "INVALID_INPUT_RANGE", bpmn.Code)
	assert.Equal(t, 0, bpmn.Retries)
}

func TestOutput_JSON(t *testing.T) {
	h := newTestHandler(t)
	out, err := h.Execute(context.Background(), &Input{Assessment: models.Assessment{
		ID:      "assessment-1",
		Ratings: models.Ratings{DataMaturity: 5, ProcessAutomation: 5, LeadershipAlignment: 5, TechnicalInfrastructure: 5},
	}})
	require.NoError(t, err)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"tier":"Ready"`)
	assert.Contains(t, string(raw), `"overall":100`)
}
