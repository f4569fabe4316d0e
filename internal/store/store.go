// Package store persists pipeline output and serves the provider catalog.
package store

import (
	"fmt"
	"sort"

	"valyntra-workers/internal/models"
)

// checkResult rejects results whose parts do not belong together. A match
// must point at an opportunity from the same result.
func checkResult(r models.PipelineResult) error {
	if r.CompanyID == "" {
		return fmt.Errorf("result has no company id")
	}
	if r.Score.AssessmentID != r.AssessmentID || r.Score.CompanyID != r.CompanyID {
		return fmt.Errorf("score does not belong to assessment %s of company %s", r.AssessmentID, r.CompanyID)
	}

	opportunityIDs := make(map[string]struct{}, len(r.Opportunities))
	for _, o := range r.Opportunities {
		if o.CompanyID != r.CompanyID {
			return fmt.Errorf("opportunity %s belongs to company %s", o.ID, o.CompanyID)
		}
		opportunityIDs[o.ID] = struct{}{}
	}
	for _, m := range r.Matches {
		if m.CompanyID != r.CompanyID {
			return fmt.Errorf("match %s belongs to company %s", m.ID, m.CompanyID)
		}
		if _, ok := opportunityIDs[m.OpportunityID]; !ok {
			return fmt.Errorf("match %s references unknown opportunity %s", m.ID, m.OpportunityID)
		}
	}
	return nil
}

// sortSnapshot orders opportunities by rank and matches by weighted score,
// highest first.
func sortSnapshot(s *models.CompanySnapshot) {
	sort.SliceStable(s.Opportunities, func(i, j int) bool {
		return s.Opportunities[i].Rank < s.Opportunities[j].Rank
	})
	sort.SliceStable(s.Matches, func(i, j int) bool {
		if s.Matches[i].WeightedScore != s.Matches[j].WeightedScore {
			return s.Matches[i].WeightedScore > s.Matches[j].WeightedScore
		}
		return s.Matches[i].ProviderID < s.Matches[j].ProviderID
	})
}
