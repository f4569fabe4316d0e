// internal/workers/assessment/match-providers/models.go
package matchproviders

import "valyntra-workers/internal/models"

type Input struct {
	Company       models.Company       `json:"company"`
	Opportunities []models.Opportunity `json:"opportunities"`
}

type Output struct {
	Matches            []models.Match `json:"matches"`
	MatchCount         int            `json:"matchCount"`
	TotalPipelineValue float64        `json:"totalPipelineValue"`
}
