package scoring

import (
	"fmt"
	"math"

	"valyntra-workers/internal/common/config"
)

const weightTolerance = 1e-9

// Weights are the category weights for the overall readiness score. The
// zero value is unusable; build one with NewWeights or DefaultWeights.
type Weights struct {
	dataMaturity            float64
	processAutomation       float64
	leadershipAlignment     float64
	technicalInfrastructure float64
}

func NewWeights(dataMaturity, processAutomation, leadershipAlignment, technicalInfrastructure float64) (Weights, error) {
	for name, w := range map[string]float64{
		"dataMaturity":            dataMaturity,
		"processAutomation":       processAutomation,
		"leadershipAlignment":     leadershipAlignment,
		"technicalInfrastructure": technicalInfrastructure,
	} {
		if w < 0 || w > 1 || math.IsNaN(w) {
			return Weights{}, fmt.Errorf("weight %s out of range: %v", name, w)
		}
	}

	sum := dataMaturity + processAutomation + leadershipAlignment + technicalInfrastructure
	if math.Abs(sum-1.0) > weightTolerance {
		return Weights{}, fmt.Errorf("weights must sum to 1.0, got %v", sum)
	}

	return Weights{
		dataMaturity:            dataMaturity,
		processAutomation:       processAutomation,
		leadershipAlignment:     leadershipAlignment,
		technicalInfrastructure: technicalInfrastructure,
	}, nil
}

func DefaultWeights() Weights {
	return Weights{
		dataMaturity:            0.30,
		processAutomation:       0.25,
		leadershipAlignment:     0.25,
		technicalInfrastructure: 0.20,
	}
}

func WeightsFromConfig(cfg config.WeightsConfig) (Weights, error) {
	return NewWeights(cfg.DataMaturity, cfg.ProcessAutomation, cfg.LeadershipAlignment, cfg.TechnicalInfrastructure)
}

func (w Weights) Sum() float64 {
	return w.dataMaturity + w.processAutomation + w.leadershipAlignment + w.technicalInfrastructure
}

func (w Weights) DataMaturity() float64            { return w.dataMaturity }
func (w Weights) ProcessAutomation() float64       { return w.processAutomation }
func (w Weights) LeadershipAlignment() float64     { return w.leadershipAlignment }
func (w Weights) TechnicalInfrastructure() float64 { return w.technicalInfrastructure }
