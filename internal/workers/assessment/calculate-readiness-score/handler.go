// internal/workers/assessment/calculate-readiness-score/handler.go
package calculatereadinessscore

import (
	"context"
	"encoding/json"
	"fmt"

	"valyntra-workers/internal/common/camunda"
	"valyntra-workers/internal/common/errors"
	"valyntra-workers/internal/common/logger"
	"valyntra-workers/internal/common/metrics"
	"valyntra-workers/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-readiness-score"
)

type Handler struct {
	config       *Config
	calculator   *scoring.Calculator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, calculator *scoring.Calculator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		calculator:   calculator,
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

// Execute scores the assessment without persisting it.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	score, err := h.calculator.Calculate(input.Assessment)
	if err != nil {
		return nil, err
	}

	h.logger.Info("readiness score calculated", map[string]interface{}{
		"assessmentId": score.AssessmentID,
		"overall":      score.Overall,
		"tier":         score.Tier.String(),
	})

	return &Output{
		Score:   score,
		Overall: score.Overall,
		Tier:    score.Tier.String(),
	}, nil
}
