package opportunity

import (
	"fmt"
	"sort"
	"strings"

	"valyntra-workers/internal/models"
)

const (
	// DefaultIndustry holds the fallback use cases for unknown industries.
	DefaultIndustry = "Default"

	// minIndustryUseCases is the size below which an industry list is padded
	// with the Default list.
	minIndustryUseCases = 3
)

// Catalog maps industries to their ordered use-case templates. It is
// immutable once built.
type Catalog struct {
	industries map[string][]models.UseCase
	names      map[string]string
}

// NewCatalog validates and copies entries. A non-empty Default list is
// required.
func NewCatalog(entries map[string][]models.UseCase) (*Catalog, error) {
	c := &Catalog{
		industries: make(map[string][]models.UseCase, len(entries)),
		names:      make(map[string]string, len(entries)),
	}

	for industry, useCases := range entries {
		key := industryKey(industry)
		if key == "" {
			return nil, fmt.Errorf("catalog industry name is empty")
		}
		if _, dup := c.industries[key]; dup {
			return nil, fmt.Errorf("catalog industry %q is defined twice", industry)
		}
		for i, uc := range useCases {
			if err := validateUseCase(uc); err != nil {
				return nil, fmt.Errorf("industry %q use case %d: %w", industry, i, err)
			}
		}
		c.industries[key] = append([]models.UseCase(nil), useCases...)
		c.names[key] = strings.TrimSpace(industry)
	}

	if len(c.industries[industryKey(DefaultIndustry)]) == 0 {
		return nil, fmt.Errorf("catalog must define a non-empty %q industry", DefaultIndustry)
	}
	return c, nil
}

func validateUseCase(uc models.UseCase) error {
	switch {
	case strings.TrimSpace(uc.Name) == "":
		return fmt.Errorf("name is required")
	case strings.TrimSpace(uc.Tag) == "":
		return fmt.Errorf("tag is required")
	case !uc.Impact.Valid():
		return fmt.Errorf("invalid impact")
	case !uc.Effort.Valid():
		return fmt.Errorf("invalid effort")
	case !uc.ROI.Valid():
		return fmt.Errorf("invalid roi")
	}
	return nil
}

func industryKey(industry string) string {
	return strings.ToLower(strings.TrimSpace(industry))
}

// Candidates returns the use cases to rank for an industry, in catalog order.
// Unknown or empty industries fall back to Default, and short industry lists
// are followed by the Default list. The result is always a fresh slice.
func (c *Catalog) Candidates(industry string) []models.UseCase {
	defaults := c.industries[industryKey(DefaultIndustry)]

	list, ok := c.industries[industryKey(industry)]
	if !ok {
		list = defaults
	}

	out := make([]models.UseCase, 0, len(list)+len(defaults))
	out = append(out, list...)
	if len(list) < minIndustryUseCases {
		out = append(out, defaults...)
	}
	return out
}

// Industries lists the catalog's industry names, sorted.
func (c *Catalog) Industries() []string {
	names := make([]string, 0, len(c.names))
	for _, name := range c.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) UseCases(industry string) ([]models.UseCase, bool) {
	list, ok := c.industries[industryKey(industry)]
	if !ok {
		return nil, false
	}
	return append([]models.UseCase(nil), list...), true
}

func uc(name, tag string, impact models.Impact, effort models.Effort, roi models.ROI) models.UseCase {
	return models.UseCase{Name: name, Tag: tag, Impact: impact, Effort: effort, ROI: roi}
}

// DefaultCatalog returns the built-in use-case library.
func DefaultCatalog() *Catalog {
	const (
		high   = models.ImpactHigh
		medium = models.ImpactMedium
	)

	c, err := NewCatalog(map[string][]models.UseCase{
		"Healthcare": {
			uc("Predictive Patient Scheduling", "optimization", high, models.EffortMedium, models.ROIQuickWin),
			uc("NLP Clinical Documentation Automation", "automation", high, models.EffortHigh, models.ROIStrategic),
			uc("Capacity & Demand Forecasting", "ml", high, models.EffortMedium, models.ROIStrategic),
			uc("Revenue Cycle Automation", "automation", medium, models.EffortLow, models.ROIQuickWin),
			uc("Medical Supply Inventory Forecasting", "ml", medium, models.EffortMedium, models.ROIStrategic),
		},
		"Manufacturing": {
			uc("Predictive Maintenance", "ml", high, models.EffortMedium, models.ROIStrategic),
			uc("Production Line Optimization", "optimization", high, models.EffortHigh, models.ROIStrategic),
			uc("Demand Forecasting & Inventory Planning", "ml", high, models.EffortMedium, models.ROIQuickWin),
			uc("Quality Control Automation", "automation", medium, models.EffortMedium, models.ROIQuickWin),
		},
		"Logistics": {
			uc("Route Optimization Modeling", "optimization", high, models.EffortMedium, models.ROIQuickWin),
			uc("Demand & Shipment Prediction", "ml", high, models.EffortMedium, models.ROIStrategic),
			uc("Warehouse Automation Planning", "automation", medium, models.EffortHigh, models.ROILongTerm),
		},
		"Hospitality": {
			uc("Revenue & Demand Forecasting", "ml", high, models.EffortLow, models.ROIQuickWin),
			uc("Operations Optimization", "optimization", high, models.EffortMedium, models.ROIStrategic),
			uc("Customer Intelligence & Personalization", "analytics", medium, models.EffortMedium, models.ROIStrategic),
		},
		"Financial Services": {
			uc("Document & Claims Automation", "automation", high, models.EffortLow, models.ROIQuickWin),
			uc("Risk Scoring & Fraud Detection", "ml", high, models.EffortHigh, models.ROIStrategic),
			uc("Customer Analytics & Churn Prediction", "analytics", medium, models.EffortMedium, models.ROIStrategic),
		},
		DefaultIndustry: {
			uc("Process & Workflow Automation", "automation", high, models.EffortLow, models.ROIQuickWin),
			uc("Predictive Analytics", "ml", high, models.EffortMedium, models.ROIStrategic),
			uc("Customer Intelligence", "analytics", medium, models.EffortMedium, models.ROIStrategic),
			uc("Forecast Modeling", "ml", medium, models.EffortMedium, models.ROIStrategic),
		},
	})
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}
