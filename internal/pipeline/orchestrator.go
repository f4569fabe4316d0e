package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"valyntra-workers/internal/common/errors"
	"valyntra-workers/internal/common/logger"
	"valyntra-workers/internal/common/metrics"
	"valyntra-workers/internal/common/observability"
	"valyntra-workers/internal/lock"
	"valyntra-workers/internal/matching"
	"valyntra-workers/internal/models"
	"valyntra-workers/internal/opportunity"
	"valyntra-workers/internal/scoring"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	StageScore         = "score"
	StageOpportunities = "opportunities"
	StageProviders     = "providers"
	StageMatching      = "matching"
	StageCommit        = "commit"

	OutcomeCommitted   = "committed"
	OutcomeFailed      = "failed"
	OutcomeInvalid     = "invalid"
	OutcomeLockTimeout = "lock_timeout"

	DefaultSinkTimeout = 5 * time.Second

	tracerName = "valyntra-workers/pipeline"
)

type Dependencies struct {
	Calculator *scoring.Calculator
	Generator  *opportunity.Generator
	Engine     *matching.Engine
	Store      Store
	Providers  ProviderSource
	Locker     lock.Locker
	Logger     logger.Logger
}

type Option func(*Orchestrator)

func WithSinks(sinks ...Sink) Option {
	return func(o *Orchestrator) { o.sinks = append(o.sinks, sinks...) }
}

// WithLockWait bounds how long a run waits for another run on the same
// company. Zero waits as long as the caller's context allows.
func WithLockWait(d time.Duration) Option {
	return func(o *Orchestrator) { o.lockWait = d }
}

func WithSinkTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.sinkTimeout = d }
}

func WithObservability(obs *observability.Observability) Option {
	return func(o *Orchestrator) { o.obs = obs }
}

func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// Orchestrator sequences the stages for one company under that company's
// lock. Stage outputs are handed forward in memory and become visible to
// readers only through the final commit.
type Orchestrator struct {
	calculator  *scoring.Calculator
	generator   *opportunity.Generator
	engine      *matching.Engine
	store       Store
	providers   ProviderSource
	locker      lock.Locker
	sinks       []Sink
	lockWait    time.Duration
	sinkTimeout time.Duration
	obs         *observability.Observability
	tracer      trace.Tracer
	logger      logger.Logger
}

func New(deps Dependencies, opts ...Option) (*Orchestrator, error) {
	switch {
	case deps.Calculator == nil:
		return nil, fmt.Errorf("pipeline: calculator is required")
	case deps.Generator == nil:
		return nil, fmt.Errorf("pipeline: generator is required")
	case deps.Engine == nil:
		return nil, fmt.Errorf("pipeline: matching engine is required")
	case deps.Store == nil:
		return nil, fmt.Errorf("pipeline: store is required")
	case deps.Providers == nil:
		return nil, fmt.Errorf("pipeline: provider source is required")
	case deps.Locker == nil:
		return nil, fmt.Errorf("pipeline: locker is required")
	}

	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	o := &Orchestrator{
		calculator:  deps.Calculator,
		generator:   deps.Generator,
		engine:      deps.Engine,
		store:       deps.Store,
		providers:   deps.Providers,
		locker:      deps.Locker,
		sinkTimeout: DefaultSinkTimeout,
		tracer:      otel.Tracer(tracerName),
		logger:      log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run scores the assessment, generates and matches opportunities and commits
// all three as one unit. Validation errors are returned as they are; any
// failure after validation is a PIPELINE_FAILED error and leaves the
// company's previous state untouched. Sink failures are logged only.
func (o *Orchestrator) Run(ctx context.Context, company models.Company, assessment models.Assessment) (result models.PipelineResult, err error) {
	start := time.Now()
	outcome := OutcomeFailed

	ctx, span := o.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("company.id", company.ID),
		attribute.String("assessment.id", assessment.ID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("pipeline.outcome", outcome))
		span.End()

		metrics.PipelineRuns.WithLabelValues(outcome).Inc()
		o.obs.RecordPipelineRun(ctx, outcome, time.Since(start))
	}()

	log := o.logger.WithFields(map[string]interface{}{
		"companyId":    company.ID,
		"assessmentId": assessment.ID,
	})

	if assessment.CompanyID == "" {
		assessment.CompanyID = company.ID
	}
	if err := validate(company, assessment); err != nil {
		outcome = OutcomeInvalid
		log.Warn("assessment rejected", map[string]interface{}{"error": err.Error()})
		return models.PipelineResult{}, err
	}

	unlock, err := o.lock(ctx, company.ID)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeCompanyLockTimeout) {
			outcome = OutcomeLockTimeout
		}
		log.Error("failed to acquire company lock", map[string]interface{}{"error": err.Error()})
		return models.PipelineResult{}, err
	}
	defer unlock()

	result, err = o.compute(ctx, company, assessment)
	if err != nil {
		log.Error("pipeline aborted", map[string]interface{}{"error": err.Error()})
		return models.PipelineResult{}, err
	}

	err = o.stage(ctx, StageCommit, func(ctx context.Context) error {
		if err := o.store.Commit(ctx, result); err != nil {
			return errors.NewPipelineCommitFailedError(company.ID, err)
		}
		return nil
	})
	if err != nil {
		log.Error("pipeline commit failed", map[string]interface{}{"error": err.Error()})
		return models.PipelineResult{}, err
	}

	outcome = OutcomeCommitted
	metrics.MatchesProduced.Observe(float64(len(result.Matches)))
	log.Info("pipeline committed", map[string]interface{}{
		"overall":            result.Score.Overall,
		"tier":               result.Score.Tier.String(),
		"opportunities":      len(result.Opportunities),
		"matches":            len(result.Matches),
		"totalPipelineValue": result.TotalPipelineValue(),
		"durationMs":         time.Since(start).Milliseconds(),
	})

	o.deliver(ctx, company, result, log)
	return result, nil
}

func validate(company models.Company, assessment models.Assessment) error {
	if company.ID == "" {
		return errors.NewAssessmentValidationFailedError("company id is required")
	}
	if assessment.ID == "" {
		return errors.NewAssessmentValidationFailedError("assessment id is required")
	}
	if assessment.CompanyID != company.ID {
		return errors.NewAssessmentValidationFailedError(
			fmt.Sprintf("assessment %s belongs to company %s, not %s", assessment.ID, assessment.CompanyID, company.ID))
	}
	return scoring.ValidateRatings(assessment.Ratings)
}

func (o *Orchestrator) lock(ctx context.Context, companyID string) (lock.Unlock, error) {
	lockCtx := ctx
	if o.lockWait > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, o.lockWait)
		defer cancel()
	}

	waitStart := time.Now()
	unlock, err := o.locker.Lock(lockCtx, companyID)
	metrics.PipelineLockWait.Observe(time.Since(waitStart).Seconds())

	switch {
	case err == nil:
		return unlock, nil
	case stderrors.Is(err, lock.ErrNotAcquired):
		return nil, errors.NewCompanyLockTimeoutError(companyID, err)
	default:
		return nil, errors.NewPipelineFailedError("lock", errors.NewExternalServiceError("lock", err))
	}
}

// compute runs the stages in order. Nothing here touches the store.
func (o *Orchestrator) compute(ctx context.Context, company models.Company, assessment models.Assessment) (models.PipelineResult, error) {
	var (
		score         models.Score
		opportunities []models.Opportunity
		providers     []models.Provider
		matches       []models.Match
	)

	steps := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{StageScore, func(context.Context) (err error) {
			score, err = o.calculator.Calculate(assessment)
			return err
		}},
		{StageOpportunities, func(context.Context) error {
			opportunities = o.generator.Generate(company, score)
			return nil
		}},
		{StageProviders, func(ctx context.Context) (err error) {
			providers, err = o.providers.ActiveProviders(ctx)
			if err != nil {
				return errors.NewProviderSnapshotFailedError(err)
			}
			return nil
		}},
		{StageMatching, func(context.Context) error {
			matches = o.engine.Run(company, opportunities, providers)
			return nil
		}},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return models.PipelineResult{}, errors.NewPipelineFailedError(step.name, err)
		}
		if err := o.stage(ctx, step.name, step.fn); err != nil {
			return models.PipelineResult{}, err
		}
	}

	return models.PipelineResult{
		CompanyID:     company.ID,
		AssessmentID:  assessment.ID,
		Score:         score,
		Opportunities: opportunities,
		Matches:       matches,
	}, nil
}

// stage times and traces fn and wraps its error as PIPELINE_FAILED.
func (o *Orchestrator) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := o.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	metrics.PipelineStageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return errors.NewPipelineFailedError(name, err)
	}
	return nil
}

func (o *Orchestrator) deliver(ctx context.Context, company models.Company, result models.PipelineResult, log logger.Logger) {
	for _, sink := range o.sinks {
		sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.sinkTimeout)
		err := sink.Deliver(sinkCtx, company, result)
		cancel()

		if err != nil {
			metrics.SinkFailures.WithLabelValues(sink.Name()).Inc()
			log.Warn("post-commit delivery failed", map[string]interface{}{
				"sink":  sink.Name(),
				"error": err.Error(),
			})
		}
	}
}

// Dashboard returns the company's active set with its total pipeline value.
func (o *Orchestrator) Dashboard(ctx context.Context, companyID string) (models.Dashboard, error) {
	snapshot, err := o.store.Snapshot(ctx, companyID)
	if err != nil {
		return models.Dashboard{}, err
	}
	return models.NewDashboard(snapshot), nil
}
