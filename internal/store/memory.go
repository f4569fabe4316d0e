package store

import (
	"context"
	"sync"

	"valyntra-workers/internal/common/errors"
	"valyntra-workers/internal/models"
)

type companyState struct {
	assessmentID  string
	opportunities []models.Opportunity
	matches       []models.Match
}

// MemoryStore keeps everything in process. Commits swap a company's state
// under one lock, so readers see either the old or the new set.
type MemoryStore struct {
	mu        sync.RWMutex
	scores    map[string]models.Score // by assessment id
	companies map[string]companyState
	providers map[string]models.Provider
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scores:    make(map[string]models.Score),
		companies: make(map[string]companyState),
		providers: make(map[string]models.Provider),
	}
}

func (s *MemoryStore) Commit(ctx context.Context, r models.PipelineResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkResult(r); err != nil {
		return err
	}

	state := companyState{
		assessmentID:  r.AssessmentID,
		opportunities: append([]models.Opportunity(nil), r.Opportunities...),
		matches:       append([]models.Match(nil), r.Matches...),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.scores[r.AssessmentID] = r.Score
	s.companies[r.CompanyID] = state
	return nil
}

func (s *MemoryStore) Snapshot(ctx context.Context, companyID string) (models.CompanySnapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.CompanySnapshot{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.companies[companyID]
	if !ok {
		return models.CompanySnapshot{}, errors.NewResourceNotFoundError("company snapshot", companyID)
	}

	snap := models.CompanySnapshot{
		CompanyID:     companyID,
		Opportunities: append([]models.Opportunity{}, state.opportunities...),
		Matches:       append([]models.Match{}, state.matches...),
	}
	if score, ok := s.scores[state.assessmentID]; ok {
		snap.Score = &score
	}
	sortSnapshot(&snap)
	return snap, nil
}

// ScoreCount reports how many scores exist for an assessment: zero or one.
func (s *MemoryStore) ScoreCount(assessmentID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.scores[assessmentID]; ok {
		return 1
	}
	return 0
}

func (s *MemoryStore) PutProvider(p models.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.CapabilityTags = append([]string(nil), p.CapabilityTags...)
	p.IndustriesServed = append([]string(nil), p.IndustriesServed...)
	s.providers[p.ID] = p
}

func (s *MemoryStore) UpsertProvider(ctx context.Context, p models.Provider) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.PutProvider(p)
	return nil
}

func (s *MemoryStore) DeactivateProvider(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.providers[id]
	if !ok {
		return errors.NewResourceNotFoundError("providers", "provider "+id)
	}
	p.Active = false
	s.providers[id] = p
	return nil
}

// ActiveProviders returns a copy of the active providers ordered by id.
func (s *MemoryStore) ActiveProviders(ctx context.Context) ([]models.Provider, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Provider, 0, len(s.providers))
	for _, p := range s.providers {
		if p.Active {
			out = append(out, p)
		}
	}
	sortProviders(out)
	return out, nil
}
