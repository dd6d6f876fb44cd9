package jobs

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/planviva/planviva/internal/engine"
	jobmetrics "github.com/planviva/planviva/internal/jobs"
	"github.com/planviva/planviva/internal/observability"
	"github.com/planviva/planviva/internal/plan"
	_ "github.com/planviva/planviva/testing"
)

type stubPlanRepo struct {
	recent []plan.Plan
}

func (s *stubPlanRepo) Create(ctx context.Context, p *plan.Plan) error { return nil }
func (s *stubPlanRepo) Get(ctx context.Context, id uuid.UUID) (*plan.Plan, error) {
	return nil, plan.ErrNotFound
}
func (s *stubPlanRepo) List(ctx context.Context, ownerID int64) ([]plan.Plan, error) {
	return nil, nil
}
func (s *stubPlanRepo) Update(ctx context.Context, p *plan.Plan) error { return nil }
func (s *stubPlanRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (s *stubPlanRepo) Revisions(ctx context.Context, id uuid.UUID) ([]plan.Revision, error) {
	return nil, nil
}
func (s *stubPlanRepo) ListRecent(ctx context.Context, limit int) ([]plan.Plan, error) {
	if len(s.recent) > limit {
		return s.recent[:limit], nil
	}
	return s.recent, nil
}

func warmupFixture(horizonYears int) engine.Input {
	months := horizonYears * 12
	series := make([]engine.MonthEntry, months)
	for m := range series {
		series[m] = engine.MonthEntry{Price: 50, Quantity: 100}
	}
	return engine.Input{
		Project: engine.Project{Name: "Oficina", Currency: "BRL", HorizonYears: horizonYears},
		Products: []engine.Product{{
			Name:   "Mesa",
			Mode:   engine.SeriesModeManual,
			Series: series,
			CostItems: []engine.VariableCostItem{
				{Description: "Madeira", QuantityPerUnit: 1, UnitValue: 30},
			},
		}},
		FixedCosts: []engine.FixedCost{
			{Category: engine.FixedCostOperational, Description: "Aluguel", Monthly: 1000},
		},
	}
}

func TestPlanWarmupHandleWarmsRecentPlans(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	good := plan.Plan{ID: uuid.New(), OwnerID: 1, Name: "boa", Input: warmupFixture(1), Revision: 1, UpdatedAt: time.Now()}
	broken := plan.Plan{ID: uuid.New(), OwnerID: 1, Name: "quebrada", Revision: 1, UpdatedAt: time.Now()}

	repo := &stubPlanRepo{recent: []plan.Plan{good, broken}}
	svc := plan.NewService(repo, plan.NewCache(client, time.Minute), observability.NewMetrics(), nil)
	job := NewPlanWarmupJob(svc, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	payload, err := json.Marshal(PlanWarmupPayload{Limit: 10, DiscountRate: 0.1})
	require.NoError(t, err)

	// A plan that fails validation must not fail the whole run.
	err = job.Handle(context.Background(), asynq.NewTask(TaskPlanWarmup, payload))
	require.NoError(t, err)

	keys := mr.Keys()
	var warmed int
	for _, key := range keys {
		if strings.HasPrefix(key, "plan:result:"+good.ID.String()) {
			warmed++
		}
	}
	require.Equal(t, 1, warmed, "expected exactly one warmed result key, got %v", keys)
}

func TestPlanWarmupRejectsMalformedPayload(t *testing.T) {
	job := NewPlanWarmupJob(plan.NewService(&stubPlanRepo{}, nil, nil, nil), nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	err := job.Handle(context.Background(), asynq.NewTask(TaskPlanWarmup, []byte("{broken")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
