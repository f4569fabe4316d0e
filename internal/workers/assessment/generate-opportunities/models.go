// internal/workers/assessment/generate-opportunities/models.go
package generateopportunities

import "valyntra-workers/internal/models"

type Input struct {
	Company models.Company `json:"company"`
	Score   models.Score   `json:"score"`
}

type Output struct {
	Opportunities    []models.Opportunity `json:"opportunities"`
	OpportunityCount int                  `json:"opportunityCount"`
}
