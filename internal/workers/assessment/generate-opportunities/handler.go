// internal/workers/assessment/generate-opportunities/handler.go
package generateopportunities

import (
	"context"
	"encoding/json"
	"fmt"

	"valyntra-workers/internal/common/camunda"
	"valyntra-workers/internal/common/errors"
	"valyntra-workers/internal/common/logger"
	"valyntra-workers/internal/common/metrics"
	"valyntra-workers/internal/opportunity"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "generate-opportunities"
)

type Handler struct {
	config       *Config
	generator    *opportunity.Generator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, generator *opportunity.Generator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		generator:    generator,
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

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input.Company.ID == "" {
		return nil, errors.NewAssessmentValidationFailedError("company.id is required")
	}
	if !input.Score.Tier.Valid() {
		return nil, errors.NewAssessmentValidationFailedError("score is required")
	}
	if input.Score.Overall < 0 || input.Score.Overall > 100 {
		return nil, errors.NewAssessmentValidationFailedError(fmt.Sprintf("score.overall must be in [0,100], got %v", input.Score.Overall))
	}

	opportunities := h.generator.Generate(input.Company, input.Score)

	h.logger.Info("opportunities generated", map[string]interface{}{
		"companyId": input.Company.ID,
		"industry":  input.Company.Industry,
		"count":     len(opportunities),
	})

	return &Output{
		Opportunities:    opportunities,
		OpportunityCount: len(opportunities),
	}, nil
}
