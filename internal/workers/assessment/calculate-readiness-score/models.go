// internal/workers/assessment/calculate-readiness-score/models.go
package calculatereadinessscore

import "valyntra-workers/internal/models"

type Input struct {
	Assessment models.Assessment `json:"assessment"`
}

// Output repeats overall and tier at the top level for gateway conditions.
type Output struct {
	Score   models.Score `json:"score"`
	Overall float64      `json:"overall"`
	Tier    string       `json:"tier"`
}
