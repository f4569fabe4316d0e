// internal/workers/assessment/run-assessment-pipeline/models.go
package runassessmentpipeline

import "valyntra-workers/internal/models"

type Input struct {
	Company    models.Company    `json:"company"`
	Assessment models.Assessment `json:"assessment"`
}

type Output struct {
	Score              models.Score         `json:"score"`
	Opportunities      []models.Opportunity `json:"opportunities"`
	Matches            []models.Match       `json:"matches"`
	Overall            float64              `json:"overall"`
	Tier               string               `json:"tier"`
	TotalPipelineValue float64              `json:"totalPipelineValue"`
}
