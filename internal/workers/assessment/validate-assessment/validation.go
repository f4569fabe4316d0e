// internal/workers/assessment/validate-assessment/validation.go
package validateassessment

import "valyntra-workers/internal/common/validation"

func rating(description string) validation.Schema {
	return validation.Schema{
		"type":        "integer",
		"minimum":     1,
		"maximum":     5,
		"description": description,
	}
}

func optionalText(maxLength int) validation.Schema {
	return validation.Schema{"type": "string", "maxLength": maxLength}
}

// GetInputSchema describes an accepted assessment submission.
func GetInputSchema() validation.Schema {
	return validation.Schema{
		"type":     "object",
		"required": []string{"id", "companyId", "ratings"},
		"properties": validation.Schema{
			"id":        validation.Schema{"type": "string", "minLength": 1, "maxLength": 255},
			"companyId": validation.Schema{"type": "string", "minLength": 1, "maxLength": 255},
			"ratings": validation.Schema{
				"type": "object",
				"required": []string{
					"dataMaturity",
					"processAutomation",
					"leadershipAlignment",
					"technicalInfrastructure",
				},
				"properties": validation.Schema{
					"dataMaturity":            rating("Quality and availability of data"),
					"processAutomation":       rating("Share of processes already automated"),
					"leadershipAlignment":     rating("Executive sponsorship for AI initiatives"),
					"technicalInfrastructure": rating("Cloud, integration and tooling maturity"),
				},
			},
			"primaryPain":  optionalText(2000),
			"currentTools": optionalText(2000),
			"budgetRange":  optionalText(100),
			"timeline":     optionalText(100),
			"submittedAt":  validation.Schema{"type": "string", "format": "date-time"},
		},
	}
}
