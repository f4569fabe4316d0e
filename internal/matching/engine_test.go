package matching

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valyntra-workers/internal/models"
)

type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func provider(id string, tags, industries []string, qual int, size models.SizeClass) models.Provider {
	return models.Provider{
		ID:                 id,
		Name:               "Provider " + id,
		CapabilityTags:     tags,
		IndustriesServed:   industries,
		QualificationScore: qual,
		Size:               size,
		Active:             true,
	}
}

func opportunity(id, tag string, impact models.Impact) models.Opportunity {
	return models.Opportunity{
		ID:      id,
		UseCase: models.UseCase{Name: id, Tag: tag, Impact: impact, Effort: models.EffortMedium, ROI: models.ROIStrategic},
	}
}

var healthcare = models.Company{ID: "company-1", Industry: "Healthcare"}

func TestCapabilityMatch(t *testing.T) {
	p := provider("p1", []string{"ML", " automation"}, nil, 0, models.SizeSMB)
	assert.True(t, CapabilityMatch(p, "ml"))
	assert.True(t, CapabilityMatch(p, "Automation"))
	assert.False(t, CapabilityMatch(p, "analytics"))
	assert.False(t, CapabilityMatch(models.Provider{}, "ml"))
}

func TestIndustryMatch(t *testing.T) {
	tests := []struct {
		name       string
		industries []string
		industry   string
		want       bool
	}{
		{"universal provider", nil, "Healthcare", true},
		{"sentinel", []string{"Retail", "Multi-Industry"}, "Healthcare", true},
		{"case insensitive", []string{"healthcare"}, "Healthcare", true},
		{"no overlap", []string{"Retail"}, "Healthcare", false},
		{"company without industry", []string{"Retail"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := provider("p", nil, tt.industries, 0, models.SizeSMB)
			assert.Equal(t, tt.want, IndustryMatch(p, tt.industry))
		})
	}
}

func TestWeightedScore(t *testing.T) {
	assert.Equal(t, 100.0, WeightedScore(true, true, 30))
	assert.Equal(t, 0.0, WeightedScore(false, false, 0))
	assert.Equal(t, 70.0, WeightedScore(true, true, 0))
	assert.Equal(t, 47.0, WeightedScore(true, false, 7))
	assert.Equal(t, 100.0, WeightedScore(true, true, 45), "qualification is clamped")
	assert.Equal(t, 40.0, WeightedScore(true, false, -5))
}

func TestEstimatePilotValue(t *testing.T) {
	tests := []struct {
		name   string
		size   models.SizeClass
		impact models.Impact
		draw   float64
		want   float64
	}{
		{"enterprise medium low draw", models.SizeEnterprise, models.ImpactMedium, 0, 255000},
		{"enterprise medium midpoint", models.SizeEnterprise, models.ImpactMedium, 0.5, 300000},
		{"enterprise high midpoint", models.SizeEnterprise, models.ImpactHigh, 0.5, 390000},
		{"mid enterprise low impact", models.SizeMidEnterprise, models.ImpactLow, 0.5, 105000},
		{"smb medium", models.SizeSMB, models.ImpactMedium, 0.5, 50000},
		{"unrecognized medium", models.SizeUnrecognized, models.ImpactMedium, 0.5, 100000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(DefaultMaxPerOpportunity, fixedSource(tt.draw))
			assert.InDelta(t, tt.want, e.EstimatePilotValue(tt.size, tt.impact), 1)
		})
	}
}

func TestEstimatePilotValue_Range(t *testing.T) {
	e := NewEngine(DefaultMaxPerOpportunity, NewRandomSource(42))

	for i := 0; i < 1000; i++ {
		v := e.EstimatePilotValue(models.SizeEnterprise, models.ImpactMedium)
		assert.GreaterOrEqual(t, v, 255000.0)
		assert.LessOrEqual(t, v, 345000.0)
	}
}

func TestNewRandomSource_Reproducible(t *testing.T) {
	a, b := NewRandomSource(7), NewRandomSource(7)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestRun_PerfectProvider(t *testing.T) {
	e := NewEngine(DefaultMaxPerOpportunity, fixedSource(0.5))
	p := provider("p1", []string{"ml"}, nil, 30, models.SizeEnterprise)

	matches := e.Run(healthcare, []models.Opportunity{opportunity("o1", "ml", models.ImpactHigh)}, []models.Provider{p})

	require.Len(t, matches, 1)
	m := matches[0]
	assert.Equal(t, 100.0, m.WeightedScore)
	assert.True(t, m.CapabilityMatch)
	assert.True(t, m.IndustryMatch)
	assert.Equal(t, 390000.0, m.EstPilotValue)
	assert.Equal(t, models.MatchStageNotStarted, m.Stage)
	assert.Equal(t, "company-1", m.CompanyID)
	assert.Equal(t, "o1", m.OpportunityID)
	assert.Equal(t, "p1", m.ProviderID)
	assert.Equal(t, "Provider p1", m.ProviderName)
	assert.NotEmpty(t, m.ID)
}

func TestRun_ZeroScoreExcluded(t *testing.T) {
	e := NewEngine(DefaultMaxPerOpportunity, fixedSource(0.5))
	nothing := provider("p0", []string{"analytics"}, []string{"Retail"}, 0, models.SizeSMB)

	matches := e.Run(healthcare, []models.Opportunity{opportunity("o1", "ml", models.ImpactHigh)}, []models.Provider{nothing})
	assert.Empty(t, matches)
}

func TestRun_InactiveProvidersIgnored(t *testing.T) {
	e := NewEngine(DefaultMaxPerOpportunity, fixedSource(0.5))
	p := provider("p1", []string{"ml"}, nil, 30, models.SizeEnterprise)
	p.Active = false

	matches := e.Run(healthcare, []models.Opportunity{opportunity("o1", "ml", models.ImpactHigh)}, []models.Provider{p})
	assert.Empty(t, matches)
}

func TestRun_EmptyCatalog(t *testing.T) {
	e := NewEngine(DefaultMaxPerOpportunity, fixedSource(0.5))

	matches := e.Run(healthcare, []models.Opportunity{opportunity("o1", "ml", models.ImpactHigh)}, nil)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestRun_TopThreeWithIDTieBreak(t *testing.T) {
	e := NewEngine(DefaultMaxPerOpportunity, fixedSource(0.5))

	providers := []models.Provider{
		provider("p-d", []string{"ml"}, nil, 10, models.SizeSMB),
		provider("p-c", []string{"ml"}, nil, 20, models.SizeSMB),
		provider("p-b", []string{"ml"}, nil, 20, models.SizeSMB),
		provider("p-a", []string{"analytics"}, nil, 30, models.SizeSMB),
		provider("p-e", []string{"ml"}, nil, 30, models.SizeSMB),
	}

	matches := e.Run(healthcare, []models.Opportunity{opportunity("o1", "ml", models.ImpactMedium)}, providers)

	require.Len(t, matches, 3)
	assert.Equal(t, "p-e", matches[0].ProviderID)
	assert.Equal(t, "p-b", matches[1].ProviderID)
	assert.Equal(t, "p-c", matches[2].ProviderID)
	assert.Equal(t, 90.0, matches[1].WeightedScore)
}

func TestRun_AtMostThreePerOpportunity(t *testing.T) {
	e := NewEngine(DefaultMaxPerOpportunity, NewRandomSource(1))

	var providers []models.Provider
	for i := 0; i < 10; i++ {
		providers = append(providers, provider(fmt.Sprintf("p%02d", i), []string{"ml", "automation"}, nil, i*3, models.SizeMidEnterprise))
	}
	opps := []models.Opportunity{
		opportunity("o1", "ml", models.ImpactHigh),
		opportunity("o2", "automation", models.ImpactLow),
		opportunity("o3", "analytics", models.ImpactMedium),
	}

	matches := e.Run(healthcare, opps, providers)

	perOpp := map[string]int{}
	for _, m := range matches {
		perOpp[m.OpportunityID]++
	}
	for _, o := range opps {
		assert.LessOrEqual(t, perOpp[o.ID], 3)
	}
	assert.Equal(t, 9, len(matches))
}
