package store

import (
	"time"

	"valyntra-workers/internal/models"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleResult(companyID, assessmentID string) models.PipelineResult {
	return models.PipelineResult{
		CompanyID:    companyID,
		AssessmentID: assessmentID,
		Score: models.Score{
			ID:           "score-" + assessmentID,
			AssessmentID: assessmentID,
			CompanyID:    companyID,
			Overall:      100,
			Categories:   models.CategoryScores{DataMaturity: 100, ProcessAutomation: 100, LeadershipAlignment: 100, TechnicalInfrastructure: 100},
			Tier:         models.TierReady,
			CalculatedAt: fixedTime,
		},
		Opportunities: []models.Opportunity{
			{
				ID:          "opp-2-" + assessmentID,
				CompanyID:   companyID,
				UseCase:     models.UseCase{Name: "Revenue Cycle Automation", Tag: "automation", Impact: models.ImpactMedium, Effort: models.EffortLow, ROI: models.ROIQuickWin},
				Priority:    9,
				Rank:        2,
				GeneratedAt: fixedTime,
			},
			{
				ID:          "opp-1-" + assessmentID,
				CompanyID:   companyID,
				UseCase:     models.UseCase{Name: "Capacity & Demand Forecasting", Tag: "ml", Impact: models.ImpactHigh, Effort: models.EffortMedium, ROI: models.ROIStrategic},
				Priority:    9.5,
				Rank:        1,
				GeneratedAt: fixedTime,
			},
		},
		Matches: []models.Match{
			{
				ID:              "match-b-" + assessmentID,
				CompanyID:       companyID,
				OpportunityID:   "opp-1-" + assessmentID,
				ProviderID:      "provider-b",
				ProviderName:    "Beta Analytics",
				CapabilityMatch: true,
				IndustryMatch:   false,
				WeightedScore:   60,
				EstPilotValue:   45500,
				Stage:           models.MatchStageNotStarted,
				CreatedAt:       fixedTime,
			},
			{
				ID:              "match-a-" + assessmentID,
				CompanyID:       companyID,
				OpportunityID:   "opp-1-" + assessmentID,
				ProviderID:      "provider-a",
				ProviderName:    "Acme AI",
				CapabilityMatch: true,
				IndustryMatch:   true,
				WeightedScore:   100,
				EstPilotValue:   390000,
				Stage:           models.MatchStageNotStarted,
				CreatedAt:       fixedTime,
			},
		},
	}
}
