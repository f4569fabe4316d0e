// internal/workers/dashboard/build-dashboard/handler.go
package builddashboard

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

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "build-dashboard"
)

type DashboardReader interface {
	Dashboard(ctx context.Context, companyID string) (models.Dashboard, error)
}

type Handler struct {
	config       *Config
	reader       DashboardReader
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, reader DashboardReader, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		reader:       reader,
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	companyID := strings.TrimSpace(input.CompanyID)
	if companyID == "" {
		return nil, errors.NewAssessmentValidationFailedError("companyId is required")
	}

	dashboard, err := h.reader.Dashboard(ctx, companyID)
	if err != nil {
		if _, ok := errors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, errors.NewQueryExecutionFailedError("dashboard", err)
	}

	output := &Output{
		Dashboard:          dashboard,
		HasScore:           dashboard.Score != nil,
		TotalPipelineValue: dashboard.TotalPipelineValue,
	}
	if dashboard.Score != nil {
		output.Tier = dashboard.Score.Tier.String()
	}

	h.logger.Debug("dashboard built", map[string]interface{}{
		"companyId":        companyID,
		"opportunityCount": dashboard.OpportunityCount,
		"matchCount":       dashboard.MatchCount,
	})
	return output, nil
}
