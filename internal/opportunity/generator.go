package opportunity

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"valyntra-workers/internal/models"
)

const (
	DefaultLimit = 5

	lowReadinessThreshold = 50.0
	impactFactor          = 1.5
)

// Generator turns a company's industry and readiness score into ranked
// opportunities.
type Generator struct {
	catalog *Catalog
	limit   int
	now     func() time.Time
}

func NewGenerator(catalog *Catalog, limit int) *Generator {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Generator{
		catalog: catalog,
		limit:   limit,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// EffortMultiplier doubles the effort weight for companies scoring below 50,
// favouring low-effort use cases.
func EffortMultiplier(overall float64) float64 {
	if overall < lowReadinessThreshold {
		return 2.0
	}
	return 1.0
}

func Priority(uc models.UseCase, overall float64) float64 {
	return uc.Impact.Weight()*impactFactor + uc.Effort.Weight()*EffortMultiplier(overall) + uc.ROI.Weight()
}

type rankedUseCase struct {
	useCase  models.UseCase
	priority float64
}

// rank orders the industry's candidates by priority, keeping catalog order
// between equal priorities, and truncates to the generator's limit.
func (g *Generator) rank(industry string, overall float64) []rankedUseCase {
	candidates := g.catalog.Candidates(industry)

	ranked := make([]rankedUseCase, len(candidates))
	for i, uc := range candidates {
		ranked[i] = rankedUseCase{useCase: uc, priority: Priority(uc, overall)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].priority > ranked[j].priority
	})

	if len(ranked) > g.limit {
		ranked = ranked[:g.limit]
	}
	return ranked
}

// Generate returns at most limit opportunities ranked 1..N.
func (g *Generator) Generate(company models.Company, score models.Score) []models.Opportunity {
	ranked := g.rank(company.Industry, score.Overall)
	generatedAt := g.now()

	opportunities := make([]models.Opportunity, len(ranked))
	for i, r := range ranked {
		opportunities[i] = models.Opportunity{
			ID:          uuid.NewString(),
			CompanyID:   company.ID,
			UseCase:     r.useCase,
			Priority:    r.priority,
			Rank:        i + 1,
			GeneratedAt: generatedAt,
		}
	}
	return opportunities
}
