// internal/workers/dashboard/build-dashboard/models.go
package builddashboard

import "valyntra-workers/internal/models"

type Input struct {
	CompanyID string `json:"companyId"`
}

type Output struct {
	Dashboard          models.Dashboard `json:"dashboard"`
	HasScore           bool             `json:"hasScore"`
	Tier               string           `json:"tier,omitempty"`
	TotalPipelineValue float64          `json:"totalPipelineValue"`
}
