package models

import "time"

type CategoryScores struct {
	DataMaturity            float64 `json:"dataMaturity"`
	ProcessAutomation       float64 `json:"processAutomation"`
	LeadershipAlignment     float64 `json:"leadershipAlignment"`
	TechnicalInfrastructure float64 `json:"technicalInfrastructure"`
}

// Score is the normalized readiness result for one assessment. At most one
// exists per assessment.
type Score struct {
	ID           string         `json:"id"`
	AssessmentID string         `json:"assessmentId"`
	CompanyID    string         `json:"companyId"`
	Overall      float64        `json:"overall"`
	Categories   CategoryScores `json:"categories"`
	Tier         Tier           `json:"tier"`
	CalculatedAt time.Time      `json:"calculatedAt"`
}
