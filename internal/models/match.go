package models

import "time"

// Match pairs one opportunity with one provider.
type Match struct {
	ID              string     `json:"id"`
	CompanyID       string     `json:"companyId"`
	OpportunityID   string     `json:"opportunityId"`
	ProviderID      string     `json:"providerId"`
	ProviderName    string     `json:"providerName"`
	CapabilityMatch bool       `json:"capabilityMatch"`
	IndustryMatch   bool       `json:"industryMatch"`
	WeightedScore   float64    `json:"weightedScore"`
	EstPilotValue   float64    `json:"estPilotValue"`
	Stage           MatchStage `json:"stage"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// TotalPipelineValue sums the estimated pilot value over matches.
func TotalPipelineValue(matches []Match) float64 {
	var total float64
	for _, m := range matches {
		total += m.EstPilotValue
	}
	return total
}
