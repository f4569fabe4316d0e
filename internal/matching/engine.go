package matching

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"valyntra-workers/internal/models"
)

const (
	DefaultMaxPerOpportunity = 3

	capabilityPoints    = 40.0
	industryPoints      = 30.0
	qualificationPoints = 30.0

	varianceMin   = 0.85
	varianceRange = 0.30
)

// Engine scores providers against opportunities and keeps the best matches.
type Engine struct {
	maxPerOpportunity int
	rnd               RandomSource
	now               func() time.Time
}

func NewEngine(maxPerOpportunity int, rnd RandomSource) *Engine {
	if maxPerOpportunity <= 0 {
		maxPerOpportunity = DefaultMaxPerOpportunity
	}
	if rnd == nil {
		rnd = NewRandomSource(0)
	}
	return &Engine{
		maxPerOpportunity: maxPerOpportunity,
		rnd:               rnd,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// CapabilityMatch reports whether tag is one of the provider's capability
// tags, ignoring case.
func CapabilityMatch(p models.Provider, tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, t := range p.CapabilityTags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}

// IndustryMatch treats providers with no industries, or with the
// multi-industry sentinel, as serving every industry.
func IndustryMatch(p models.Provider, industry string) bool {
	if len(p.IndustriesServed) == 0 {
		return true
	}
	industry = strings.TrimSpace(industry)
	for _, served := range p.IndustriesServed {
		served = strings.TrimSpace(served)
		if strings.EqualFold(served, models.IndustryMultiIndustry) {
			return true
		}
		if industry != "" && strings.EqualFold(served, industry) {
			return true
		}
	}
	return false
}

// WeightedScore combines the match flags with the provider's qualification
// score. Qualification is clamped to [0,30] so the result stays within 100.
func WeightedScore(capability, industry bool, qualification int) float64 {
	if qualification < models.MinQualificationScore {
		qualification = models.MinQualificationScore
	}
	if qualification > models.MaxQualificationScore {
		qualification = models.MaxQualificationScore
	}

	var score float64
	if capability {
		score += capabilityPoints
	}
	if industry {
		score += industryPoints
	}
	score += float64(qualification) / models.MaxQualificationScore * qualificationPoints
	return math.Round(score*10) / 10
}

// EstimatePilotValue draws a variance in [0.85, 1.15] and applies it to the
// size base and impact multiplier, rounded to whole currency units.
func (e *Engine) EstimatePilotValue(size models.SizeClass, impact models.Impact) float64 {
	variance := varianceMin + e.rnd.Float64()*varianceRange
	return math.Round(size.PilotBase() * impact.PilotMultiplier() * variance)
}

type candidate struct {
	provider   models.Provider
	capability bool
	industry   bool
	score      float64
}

// Run matches every opportunity against the active providers. Providers that
// score zero are dropped; at most maxPerOpportunity matches are kept per
// opportunity, highest score first with provider id breaking ties.
func (e *Engine) Run(company models.Company, opportunities []models.Opportunity, providers []models.Provider) []models.Match {
	active := make([]models.Provider, 0, len(providers))
	for _, p := range providers {
		if p.Active {
			active = append(active, p)
		}
	}

	createdAt := e.now()
	matches := make([]models.Match, 0, len(opportunities)*e.maxPerOpportunity)

	for _, opp := range opportunities {
		candidates := make([]candidate, 0, len(active))
		for _, p := range active {
			c := candidate{
				provider:   p,
				capability: CapabilityMatch(p, opp.Tag),
				industry:   IndustryMatch(p, company.Industry),
			}
			c.score = WeightedScore(c.capability, c.industry, p.QualificationScore)
			if c.score > 0 {
				candidates = append(candidates, c)
			}
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].score != candidates[j].score {
				return candidates[i].score > candidates[j].score
			}
			return candidates[i].provider.ID < candidates[j].provider.ID
		})
		if len(candidates) > e.maxPerOpportunity {
			candidates = candidates[:e.maxPerOpportunity]
		}

		for _, c := range candidates {
			matches = append(matches, models.Match{
				ID:              uuid.NewString(),
				CompanyID:       company.ID,
				OpportunityID:   opp.ID,
				ProviderID:      c.provider.ID,
				ProviderName:    c.provider.Name,
				CapabilityMatch: c.capability,
				IndustryMatch:   c.industry,
				WeightedScore:   c.score,
				EstPilotValue:   e.EstimatePilotValue(c.provider.Size, opp.Impact),
				Stage:           models.MatchStageNotStarted,
				CreatedAt:       createdAt,
			})
		}
	}

	return matches
}
