package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/planviva/planviva/internal/engine"
	jobmetrics "github.com/planviva/planviva/internal/jobs"
	"github.com/planviva/planviva/internal/plan"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const defaultWarmupLimit = 50

// PlanWarmupJob precomputes base scenario results for recently updated
// plans so the first dashboard view after a quiet period hits the cache.
type PlanWarmupJob struct {
	Plans   *plan.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewPlanWarmupJob wires dependencies for the warmup handler.
func NewPlanWarmupJob(plans *plan.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *PlanWarmupJob {
	return &PlanWarmupJob{Plans: plans, Logger: logger, Metrics: metrics}
}

// Handle processes plan warmup tasks.
func (j *PlanWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Plans == nil {
		return errors.New("plan warmup: handler not configured")
	}
	var payload PlanWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Limit <= 0 {
		payload.Limit = defaultWarmupLimit
	}

	tracker := j.metrics().Track(TaskPlanWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("limit", payload.Limit))
	logger.Info("starting plan warmup")
	start := time.Now()

	plans, err := j.Plans.RecentPlans(ctx, payload.Limit)
	if err != nil {
		resultErr = err
		logger.Error("list recent plans", slog.Any("error", err))
		return resultErr
	}
	if len(plans) == 0 {
		logger.Info("no plans discovered for warmup")
		return resultErr
	}

	opts := engine.Options{DiscountRate: payload.DiscountRate}
	warmed := 0
	for i := range plans {
		if err := j.Plans.Warm(ctx, &plans[i], opts); err != nil {
			// A plan with stale assumptions must not starve the rest.
			logger.Warn("warm plan", slog.String("plan_id", plans[i].ID.String()), slog.Any("error", err))
			continue
		}
		warmed++
	}
	j.metrics().AddWarmedPlans(warmed)

	logger.Info("completed plan warmup", slog.Int("warmed", warmed), slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *PlanWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *PlanWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
