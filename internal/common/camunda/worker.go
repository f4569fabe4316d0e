// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"valyntra-workers/internal/common/config"
	"valyntra-workers/internal/common/errors"
	"valyntra-workers/internal/common/metrics"
	"valyntra-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// HandlerFunc matches the Zeebe job handler signature. Handlers report their
// own outcome to the broker.
type HandlerFunc func(client worker.JobClient, job entities.Job)

const (
	statusCompleted   = "completed"
	statusFailed      = "failed"
	statusErrorThrown = "error_thrown"
	statusNoResult    = "no_result"
)

// trackingClient notes which terminal command a handler issued.
type trackingClient struct {
	worker.JobClient
	status string
}

func (c *trackingClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	c.status = statusCompleted
	return c.JobClient.NewCompleteJobCommand()
}

func (c *trackingClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	c.status = statusFailed
	return c.JobClient.NewFailJobCommand()
}

func (c *trackingClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	c.status = statusErrorThrown
	return c.JobClient.NewThrowErrorCommand()
}

// Instrument wraps handler with the active-jobs gauge, the duration histogram
// and the OpenTelemetry job instruments.
func Instrument(taskType string, handler HandlerFunc, obs *observability.Observability) HandlerFunc {
	return func(client worker.JobClient, job entities.Job) {
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		defer active.Dec()

		tracked := &trackingClient{JobClient: client, status: statusNoResult}
		start := time.Now()
		handler(tracked, job)
		elapsed := time.Since(start)

		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
		ctx := context.Background()
		obs.RecordJobProcessed(ctx, taskType, tracked.status)
		obs.RecordJobDuration(ctx, taskType, elapsed, tracked.status)
	}
}

type Worker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

func StartWorker(
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handler HandlerFunc,
	obs *observability.Observability,
	logger *zap.Logger,
) *Worker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(Instrument(taskType, handler, obs))).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeoutMs", wcfg.Timeout),
	)

	return &Worker{
		worker:   jobWorker,
		logger:   logger,
		taskType: taskType,
	}
}

func (w *Worker) TaskType() string {
	return w.taskType
}

// Stop stops polling and waits for in-flight jobs to finish.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
	w.worker.AwaitClose()
}

// CompleteJob completes job with output as its variables, retrying transient
// broker errors.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return errors.NewInternalError(fmt.Errorf("create complete job command: %w", err))
	}
	return ExecuteWithRetry(ctx, DefaultRetryConfig, func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	}, "complete-job")
}
