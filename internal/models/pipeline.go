package models

// PipelineResult is everything one pipeline run produces for a company. It is
// committed as a unit.
type PipelineResult struct {
	CompanyID     string        `json:"companyId"`
	AssessmentID  string        `json:"assessmentId"`
	Score         Score         `json:"score"`
	Opportunities []Opportunity `json:"opportunities"`
	Matches       []Match       `json:"matches"`
}

func (r PipelineResult) TotalPipelineValue() float64 {
	return TotalPipelineValue(r.Matches)
}

// Snapshot is the state readers see once r is committed.
func (r PipelineResult) Snapshot() CompanySnapshot {
	score := r.Score
	return CompanySnapshot{
		CompanyID:     r.CompanyID,
		Score:         &score,
		Opportunities: r.Opportunities,
		Matches:       r.Matches,
	}
}

// CompanySnapshot is the active, mutually consistent state for a company.
type CompanySnapshot struct {
	CompanyID     string        `json:"companyId"`
	Score         *Score        `json:"score,omitempty"`
	Opportunities []Opportunity `json:"opportunities"`
	Matches       []Match       `json:"matches"`
}

// Dashboard is the read model handed to reporting collaborators.
type Dashboard struct {
	CompanySnapshot
	TotalPipelineValue float64 `json:"totalPipelineValue"`
	OpportunityCount   int     `json:"opportunityCount"`
	MatchCount         int     `json:"matchCount"`
}

func NewDashboard(s CompanySnapshot) Dashboard {
	return Dashboard{
		CompanySnapshot:    s,
		TotalPipelineValue: TotalPipelineValue(s.Matches),
		OpportunityCount:   len(s.Opportunities),
		MatchCount:         len(s.Matches),
	}
}
