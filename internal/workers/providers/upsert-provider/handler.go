// internal/workers/providers/upsert-provider/handler.go
package upsertprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"valyntra-workers/internal/common/camunda"
	"valyntra-workers/internal/common/errors"
	"valyntra-workers/internal/common/logger"
	"valyntra-workers/internal/common/metrics"
	"valyntra-workers/internal/models"
	"valyntra-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "upsert-provider"
)

type Handler struct {
	config       *Config
	admin        store.ProviderAdmin
	cache        store.ProviderCache
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler builds the handler. cache may be nil when provider reads are
// not cached.
func NewHandler(config *Config, admin store.ProviderAdmin, cache store.ProviderCache, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		admin:        admin,
		cache:        cache,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := decodeInput(job.Variables)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	bpmnErr := h.errorHandler.HandleJobError(ctx, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()
}

// Execute writes the provider and then drops the cached catalog so the next
// pipeline run reads the change.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	p := input.Provider
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)

	if err := validateProvider(p); err != nil {
		return nil, err
	}

	if err := h.admin.UpsertProvider(ctx, p); err != nil {
		if _, ok := errors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, errors.NewQueryExecutionFailedError("upsert_provider", err)
	}

	invalidated := false
	if h.cache != nil {
		if err := h.cache.Invalidate(ctx); err != nil {
			return nil, errors.NewExternalServiceError("provider-cache", err)
		}
		invalidated = true
	}

	h.logger.Info("provider saved", map[string]interface{}{
		"providerId":       p.ID,
		"active":           p.Active,
		"cacheInvalidated": invalidated,
	})

	return &Output{
		ProviderID:       p.ID,
		Active:           p.Active,
		CacheInvalidated: invalidated,
	}, nil
}

// decodeInput treats a provider without an "active" field as active.
func decodeInput(variables string) (*Input, error) {
	input := Input{Provider: models.Provider{Active: true}}
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewProviderInvalidError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func validateProvider(p models.Provider) error {
	switch {
	case p.ID == "":
		return errors.NewProviderInvalidError("provider.id is required")
	case p.Name == "":
		return errors.NewProviderInvalidError("provider.name is required")
	case p.QualificationScore < models.MinQualificationScore || p.QualificationScore > models.MaxQualificationScore:
		return errors.NewProviderInvalidError(fmt.Sprintf("provider.qualificationScore must be in [%d,%d], got %d",
			models.MinQualificationScore, models.MaxQualificationScore, p.QualificationScore))
	}
	for i, tag := range p.CapabilityTags {
		if strings.TrimSpace(tag) == "" {
			return errors.NewProviderInvalidError(fmt.Sprintf("provider.capabilityTags[%d] is empty", i))
		}
	}
	return nil
}
