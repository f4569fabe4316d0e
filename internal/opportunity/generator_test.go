package opportunity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valyntra-workers/internal/models"
)

func names(opps []models.Opportunity) []string {
	out := make([]string, len(opps))
	for i, o := range opps {
		out[i] = o.Name
	}
	return out
}

func assertRanks(t *testing.T, opps []models.Opportunity) {
	t.Helper()
	for i, o := range opps {
		assert.Equal(t, i+1, o.Rank)
	}
}

func TestPriority(t *testing.T) {
	quickWin := uc("a", "ml", models.ImpactHigh, models.EffortLow, models.ROIQuickWin)
	assert.Equal(t, 4.5+3+3, Priority(quickWin, 80))
	assert.Equal(t, 4.5+6+3, Priority(quickWin, 49.9))
	assert.Equal(t, 1.0, EffortMultiplier(50))
	assert.Equal(t, 2.0, EffortMultiplier(0))
}

func TestGenerate_HealthcareReady(t *testing.T) {
	g := NewGenerator(DefaultCatalog(), DefaultLimit)

	opps := g.Generate(models.Company{ID: "company-1", Industry: "Healthcare"}, models.Score{Overall: 100})

	require.Len(t, opps, 5)
	assert.Equal(t, []string{
		"Predictive Patient Scheduling",
		"Revenue Cycle Automation",
		"Capacity & Demand Forecasting",
		"NLP Clinical Documentation Automation",
		"Medical Supply Inventory Forecasting",
	}, names(opps))
	assertRanks(t, opps)

	seen := map[string]bool{}
	for _, o := range opps {
		assert.Equal(t, "company-1", o.CompanyID)
		assert.NotEmpty(t, o.ID)
		assert.False(t, seen[o.ID])
		seen[o.ID] = true
	}
}

func TestGenerate_LowReadinessFavoursLowEffort(t *testing.T) {
	g := NewGenerator(DefaultCatalog(), DefaultLimit)

	opps := g.Generate(models.Company{Industry: "healthcare"}, models.Score{Overall: 30})

	require.Len(t, opps, 5)
	assert.Equal(t, "Revenue Cycle Automation", opps[0].Name)
	assert.Equal(t, 12.0, opps[0].Priority)
	assert.Equal(t, "NLP Clinical Documentation Automation", opps[4].Name)
}

func TestGenerate_EffortMultiplierFlipsOrder(t *testing.T) {
	catalog, err := NewCatalog(map[string][]models.UseCase{
		"Retail": {
			uc("Heavy Lift", "ml", models.ImpactMedium, models.EffortHigh, models.ROIStrategic),
			uc("Light Touch", "ml", models.ImpactMedium, models.EffortLow, models.ROIStrategic),
			uc("Filler", "analytics", models.ImpactLow, models.EffortHigh, models.ROILongTerm),
		},
		DefaultIndustry: {uc("Default", "ml", models.ImpactLow, models.EffortLow, models.ROILongTerm)},
	})
	require.NoError(t, err)

	opps := NewGenerator(catalog, DefaultLimit).Generate(models.Company{Industry: "Retail"}, models.Score{Overall: 30})

	require.Len(t, opps, 3)
	assert.Equal(t, "Light Touch", opps[0].Name)
	assert.Equal(t, "Heavy Lift", opps[1].Name)
}

func TestGenerate_UnknownIndustryFallsBackToDefault(t *testing.T) {
	g := NewGenerator(DefaultCatalog(), DefaultLimit)

	for _, industry := range []string{"Retail", "", "   "} {
		opps := g.Generate(models.Company{Industry: industry}, models.Score{Overall: 80})

		assert.Equal(t, []string{
			"Process & Workflow Automation",
			"Predictive Analytics",
			"Customer Intelligence",
			"Forecast Modeling",
		}, names(opps), "industry=%q", industry)
		assertRanks(t, opps)
	}
}

func TestGenerate_ShortIndustryListIsPadded(t *testing.T) {
	catalog, err := NewCatalog(map[string][]models.UseCase{
		"Energy": {
			uc("Grid Load Forecasting", "ml", models.ImpactHigh, models.EffortLow, models.ROIQuickWin),
			uc("Asset Inspection", "automation", models.ImpactLow, models.EffortHigh, models.ROILongTerm),
		},
		DefaultIndustry: DefaultCatalog().industries["default"],
	})
	require.NoError(t, err)

	opps := NewGenerator(catalog, DefaultLimit).Generate(models.Company{Industry: "Energy"}, models.Score{Overall: 80})

	require.Len(t, opps, 5)
	assert.Equal(t, "Grid Load Forecasting", opps[0].Name)
	assert.NotContains(t, names(opps), "Asset Inspection")
	assertRanks(t, opps)

	energy, _ := catalog.UseCases("Energy")
	assert.Len(t, energy, 2, "padding must not mutate the catalog")
}

func TestGenerate_TiesKeepCatalogOrder(t *testing.T) {
	catalog, err := NewCatalog(map[string][]models.UseCase{
		DefaultIndustry: {
			uc("First", "ml", models.ImpactMedium, models.EffortMedium, models.ROIStrategic),
			uc("Second", "ml", models.ImpactMedium, models.EffortMedium, models.ROIStrategic),
			uc("Third", "ml", models.ImpactMedium, models.EffortMedium, models.ROIStrategic),
		},
	})
	require.NoError(t, err)

	opps := NewGenerator(catalog, DefaultLimit).Generate(models.Company{}, models.Score{Overall: 60})
	assert.Equal(t, []string{"First", "Second", "Third"}, names(opps))
}

func TestGenerate_Limit(t *testing.T) {
	opps := NewGenerator(DefaultCatalog(), 2).Generate(models.Company{Industry: "Manufacturing"}, models.Score{Overall: 60})
	require.Len(t, opps, 2)
	assertRanks(t, opps)
}

func TestNewCatalog_Validation(t *testing.T) {
	_, err := NewCatalog(map[string][]models.UseCase{
		"Healthcare": {uc("x", "ml", models.ImpactHigh, models.EffortLow, models.ROIQuickWin)},
	})
	assert.ErrorContains(t, err, "Default")

	_, err = NewCatalog(map[string][]models.UseCase{
		DefaultIndustry: {{Name: "x", Tag: "ml"}},
	})
	assert.ErrorContains(t, err, "invalid impact")

	_, err = NewCatalog(map[string][]models.UseCase{
		DefaultIndustry: {uc("x", "ml", models.ImpactHigh, models.EffortLow, models.ROIQuickWin)},
		"default ":      {uc("y", "ml", models.ImpactHigh, models.EffortLow, models.ROIQuickWin)},
	})
	assert.ErrorContains(t, err, "defined twice")
}
