// internal/workers/assessment/validate-assessment/handler.go
package validateassessment

import (
	"context"
	"encoding/json"
	"fmt"

	"valyntra-workers/internal/common/camunda"
	"valyntra-workers/internal/common/errors"
	"valyntra-workers/internal/common/logger"
	"valyntra-workers/internal/common/metrics"
	"valyntra-workers/internal/common/validation"
	"valyntra-workers/internal/models"
	"valyntra-workers/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-assessment"
)

// Handler checks a raw submission against the assessment schema. Invalid
// submissions complete with isValid=false so the process can branch; only
// malformed job variables fail the job.
type Handler struct {
	config       *Config
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
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
	if input.Assessment == nil {
		return invalid(validation.ValidationError{
			Field:   "assessment",
			Code:    "REQUIRED",
			Message: "assessment is required",
		}), nil
	}

	raw := make(map[string]interface{}, len(input.Assessment)+1)
	for k, v := range input.Assessment {
		raw[k] = v
	}
	if _, ok := raw["companyId"]; !ok && input.CompanyID != "" {
		raw["companyId"] = input.CompanyID
	}

	result, err := validation.Validate(raw, GetInputSchema())
	if err != nil {
		return nil, errors.NewAssessmentValidationFailedError(err.Error())
	}
	if !result.Valid {
		h.logger.Info("assessment rejected", map[string]interface{}{
			"errorCount": len(result.Errors),
			"errors":     result.GetErrorMessages(),
		})
		return invalid(result.Errors...), nil
	}

	assessment, err := decode(raw)
	if err != nil {
		return invalid(validation.ValidationError{Field: "assessment", Code: "INVALID_TYPE", Message: err.Error()}), nil
	}
	if input.CompanyID != "" && assessment.CompanyID != input.CompanyID {
		return invalid(validation.ValidationError{
			Field:   "companyId",
			Code:    "MISMATCH",
			Message: fmt.Sprintf("assessment belongs to %s, job is for %s", assessment.CompanyID, input.CompanyID),
		}), nil
	}
	if err := scoring.ValidateRatings(assessment.Ratings); err != nil {
		return nil, err
	}

	h.logger.Info("assessment accepted", map[string]interface{}{
		"assessmentId": assessment.ID,
		"companyId":    assessment.CompanyID,
	})

	return &Output{
		IsValid:          true,
		Assessment:       assessment,
		ValidationErrors: []validation.ValidationError{},
	}, nil
}

func decode(raw map[string]interface{}) (*models.Assessment, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var a models.Assessment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func invalid(errs ...validation.ValidationError) *Output {
	return &Output{IsValid: false, ValidationErrors: errs}
}
