// internal/workers/assessment/match-providers/handler.go
package matchproviders

import (
	"context"
	"encoding/json"
	"fmt"

	"valyntra-workers/internal/common/camunda"
	"valyntra-workers/internal/common/errors"
	"valyntra-workers/internal/common/logger"
	"valyntra-workers/internal/common/metrics"
	"valyntra-workers/internal/matching"
	"valyntra-workers/internal/models"
	"valyntra-workers/internal/pipeline"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "match-providers"
)

type Handler struct {
	config       *Config
	engine       *matching.Engine
	providers    pipeline.ProviderSource
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, engine *matching.Engine, providers pipeline.ProviderSource, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       engine,
		providers:    providers,
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
		h.failJob(ctx, client, job, errors.NewAssessmentValidationFailedError(fmt.Sprintf("parse input: %v", err)))
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

// Execute matches against one provider snapshot taken up front.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Company.ID == "" {
		return nil, errors.NewAssessmentValidationFailedError("company.id is required")
	}
	if err := validateOpportunities(input.Opportunities); err != nil {
		return nil, err
	}

	providers, err := h.providers.ActiveProviders(ctx)
	if err != nil {
		return nil, errors.NewProviderSnapshotFailedError(err)
	}

	matches := h.engine.Run(input.Company, input.Opportunities, providers)
	total := models.TotalPipelineValue(matches)

	h.logger.Info("providers matched", map[string]interface{}{
		"companyId":          input.Company.ID,
		"opportunities":      len(input.Opportunities),
		"providers":          len(providers),
		"matches":            len(matches),
		"totalPipelineValue": total,
	})

	return &Output{
		Matches:            matches,
		MatchCount:         len(matches),
		TotalPipelineValue: total,
	}, nil
}

func validateOpportunities(opportunities []models.Opportunity) error {
	for i, o := range opportunities {
		switch {
		case o.ID == "":
			return errors.NewAssessmentValidationFailedError(fmt.Sprintf("opportunities[%d].id is required", i))
		case o.Tag == "":
			return errors.NewAssessmentValidationFailedError(fmt.Sprintf("opportunities[%d].tag is required", i))
		case !o.Impact.Valid():
			return errors.NewAssessmentValidationFailedError(fmt.Sprintf("opportunities[%d].impact is required", i))
		}
	}
	return nil
}
