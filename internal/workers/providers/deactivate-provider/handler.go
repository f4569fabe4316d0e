// internal/workers/providers/deactivate-provider/handler.go
package deactivateprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"valyntra-workers/internal/common/camunda"
	"valyntra-workers/internal/common/errors"
	"valyntra-workers/internal/common/logger"
	"valyntra-workers/internal/common/metrics"
	"valyntra-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "deactivate-provider"
)

type Handler struct {
	config       *Config
	admin        store.ProviderAdmin
	cache        store.ProviderCache
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

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

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, errors.NewProviderInvalidError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.Execute(ctx, &input)
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

// Execute soft-deletes the provider. Committed matches keep their provider
// reference; later runs no longer see it once the cache is dropped.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	id := strings.TrimSpace(input.ProviderID)
	if id == "" {
		return nil, errors.NewProviderInvalidError("providerId is required")
	}

	if err := h.admin.DeactivateProvider(ctx, id); err != nil {
		if _, ok := errors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, errors.NewQueryExecutionFailedError("deactivate_provider", err)
	}

	invalidated := false
	if h.cache != nil {
		if err := h.cache.Invalidate(ctx); err != nil {
			return nil, errors.NewExternalServiceError("provider-cache", err)
		}
		invalidated = true
	}

	h.logger.Info("provider deactivated", map[string]interface{}{
		"providerId":       id,
		"cacheInvalidated": invalidated,
	})

	return &Output{
		ProviderID:       id,
		Deactivated:      true,
		CacheInvalidated: invalidated,
	}, nil
}
