// internal/workers/assessment/validate-assessment/models.go
package validateassessment

import (
	"valyntra-workers/internal/common/validation"
	"valyntra-workers/internal/models"
)

type Input struct {
	CompanyID  string                 `json:"companyId"`
	Assessment map[string]interface{} `json:"assessment"`
}

type Output struct {
	IsValid          bool                         `json:"isValid"`
	Assessment       *models.Assessment           `json:"assessment,omitempty"`
	ValidationErrors []validation.ValidationError `json:"validationErrors"`
}
