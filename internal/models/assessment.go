package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Ratings are the four questionnaire answers, each an integer in [1,5].
type Ratings struct {
	DataMaturity            int `json:"dataMaturity"`
	ProcessAutomation       int `json:"processAutomation"`
	LeadershipAlignment     int `json:"leadershipAlignment"`
	TechnicalInfrastructure int `json:"technicalInfrastructure"`
}

type RatingField struct {
	Name  string
	Value int
}

// Fields lists the ratings in a fixed order, keyed by their JSON names.
func (r Ratings) Fields() []RatingField {
	return []RatingField{
		{Name: "dataMaturity", Value: r.DataMaturity},
		{Name: "processAutomation", Value: r.ProcessAutomation},
		{Name: "leadershipAlignment", Value: r.LeadershipAlignment},
		{Name: "technicalInfrastructure", Value: r.TechnicalInfrastructure},
	}
}

// Assessment is an immutable questionnaire submission. Only the most recent
// one for a company drives its active score, opportunities and matches.
type Assessment struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"companyId"`
	Ratings      Ratings   `json:"ratings"`
	PrimaryPain  string    `json:"primaryPain,omitempty"`
	CurrentTools string    `json:"currentTools,omitempty"`
	BudgetRange  string    `json:"budgetRange,omitempty"`
	Timeline     string    `json:"timeline,omitempty"`
	SubmittedAt  time.Time `json:"submittedAt"`
}
