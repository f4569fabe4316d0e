package scoring

import (
	"math"
	"time"

	"github.com/google/uuid"

	"valyntra-workers/internal/common/errors"
	"valyntra-workers/internal/models"
)

const (
	readyThreshold      = 70.0
	developingThreshold = 45.0
)

// Calculator maps questionnaire ratings to a readiness score.
type Calculator struct {
	weights Weights
	now     func() time.Time
}

func NewCalculator(weights Weights) *Calculator {
	return &Calculator{
		weights: weights,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (c *Calculator) Weights() Weights {
	return c.weights
}

// Normalize maps a rating in [1,5] onto [0,100]. Callers must validate the
// range first; see ValidateRatings.
func Normalize(v int) float64 {
	return float64(v-models.MinRating) / float64(models.MaxRating-models.MinRating) * 100
}

// ValidateRatings rejects the first rating outside [1,5].
func ValidateRatings(r models.Ratings) error {
	for _, f := range r.Fields() {
		if f.Value < models.MinRating || f.Value > models.MaxRating {
			return errors.NewInvalidInputRangeError(f.Name, f.Value)
		}
	}
	return nil
}

// TierFor bands an overall score. Each band includes its lower bound.
func TierFor(overall float64) models.Tier {
	switch {
	case overall >= readyThreshold:
		return models.TierReady
	case overall >= developingThreshold:
		return models.TierDeveloping
	default:
		return models.TierEarlyStage
	}
}

// Calculate scores an assessment. Out-of-range ratings are rejected, never
// clamped.
func (c *Calculator) Calculate(a models.Assessment) (models.Score, error) {
	if err := ValidateRatings(a.Ratings); err != nil {
		return models.Score{}, err
	}

	categories := models.CategoryScores{
		DataMaturity:            Normalize(a.Ratings.DataMaturity),
		ProcessAutomation:       Normalize(a.Ratings.ProcessAutomation),
		LeadershipAlignment:     Normalize(a.Ratings.LeadershipAlignment),
		TechnicalInfrastructure: Normalize(a.Ratings.TechnicalInfrastructure),
	}

	weighted := categories.DataMaturity*c.weights.dataMaturity +
		categories.ProcessAutomation*c.weights.processAutomation +
		categories.LeadershipAlignment*c.weights.leadershipAlignment +
		categories.TechnicalInfrastructure*c.weights.technicalInfrastructure

	overall := round1(weighted)

	return models.Score{
		ID:           uuid.NewString(),
		AssessmentID: a.ID,
		CompanyID:    a.CompanyID,
		Overall:      overall,
		Categories: models.CategoryScores{
			DataMaturity:            round1(categories.DataMaturity),
			ProcessAutomation:       round1(categories.ProcessAutomation),
			LeadershipAlignment:     round1(categories.LeadershipAlignment),
			TechnicalInfrastructure: round1(categories.TechnicalInfrastructure),
		},
		Tier:         TierFor(overall),
		CalculatedAt: c.now(),
	}, nil
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
