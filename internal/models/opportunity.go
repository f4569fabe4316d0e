package models

import "time"

// UseCase is a catalog template for a recommended initiative.
type UseCase struct {
	Name   string `json:"useCase"`
	Tag    string `json:"tag"`
	Impact Impact `json:"impact"`
	Effort Effort `json:"effort"`
	ROI    ROI    `json:"roi"`
}

// Opportunity is a ranked use case recommended to a company. Ranks run 1..N
// without gaps.
type Opportunity struct {
	ID        string `json:"id"`
	CompanyID string `json:"companyId"`
	UseCase
	Priority    float64   `json:"priority"`
	Rank        int       `json:"rank"`
	GeneratedAt time.Time `json:"generatedAt"`
}
