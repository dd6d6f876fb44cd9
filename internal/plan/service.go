package plan

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/planviva/planviva/internal/engine"
	"github.com/planviva/planviva/internal/format"
	"github.com/planviva/planviva/internal/observability"
)

// batchConcurrency bounds parallel scenario runs per request.
const batchConcurrency = 4

// Service wraps plan business rules: ownership checks, engine execution and
// result caching.
type Service struct {
	repo    Repository
	cache   *Cache
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, cache *Cache, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, metrics: metrics, logger: logger}
}

// Create validates the assumptions and stores a new plan for the owner.
func (s *Service) Create(ctx context.Context, ownerID int64, name string, input engine.Input) (*Plan, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	p := &Plan{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    name,
		Input:   input,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get fetches a plan, hiding other owners' plans behind ErrNotFound.
func (s *Service) Get(ctx context.Context, ownerID int64, id uuid.UUID) (*Plan, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return p, nil
}

// List returns the owner's plans.
func (s *Service) List(ctx context.Context, ownerID int64) ([]Plan, error) {
	return s.repo.List(ctx, ownerID)
}

// Update replaces the plan's assumptions and invalidates cached results.
func (s *Service) Update(ctx context.Context, ownerID int64, id uuid.UUID, name string, input engine.Input) (*Plan, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	p.Name = name
	p.Input = input
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("bump result cache", slog.Any("error", err))
	}
	return p, nil
}

// Delete removes a plan and invalidates cached results.
func (s *Service) Delete(ctx context.Context, ownerID int64, id uuid.UUID) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("bump result cache", slog.Any("error", err))
	}
	return nil
}

// Revisions returns the plan's assumption history.
func (s *Service) Revisions(ctx context.Context, ownerID int64, id uuid.UUID) ([]Revision, error) {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return nil, err
	}
	return s.repo.Revisions(ctx, id)
}

// Compute runs one scenario against the stored plan, serving repeated calls
// from the cache. The cache key folds in the plan revision, so stale results
// can never outlive an update.
func (s *Service) Compute(ctx context.Context, ownerID int64, id uuid.UUID, opts engine.Options) (*engine.Result, error) {
	p, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return s.compute(ctx, p, opts)
}

func (s *Service) compute(ctx context.Context, p *Plan, opts engine.Options) (*engine.Result, error) {
	key, err := s.cache.BuildKey(ctx, keyResult(p.ID, p.Revision, opts))
	if err != nil {
		return nil, err
	}
	var result engine.Result
	err = s.cache.FetchJSON(ctx, key, &result, func(ctx context.Context) (interface{}, error) {
		start := time.Now()
		res, err := engine.Run(p.Input, opts)
		if err != nil {
			return nil, err
		}
		s.metrics.ObserveComputation(time.Since(start))
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Warm precomputes one scenario for a stored plan straight into the cache.
// It bypasses ownership checks; callers are trusted background jobs.
func (s *Service) Warm(ctx context.Context, p *Plan, opts engine.Options) error {
	_, err := s.compute(ctx, p, opts)
	return err
}

// RecentPlans lists the plans most worth warming, newest update first.
func (s *Service) RecentPlans(ctx context.Context, limit int) ([]Plan, error) {
	return s.repo.ListRecent(ctx, limit)
}

// ComputeBatch runs several scenarios in parallel, preserving input order.
func (s *Service) ComputeBatch(ctx context.Context, ownerID int64, id uuid.UUID, scenarios []engine.Options) ([]*engine.Result, error) {
	p, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	results := make([]*engine.Result, len(scenarios))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, opts := range scenarios {
		g.Go(func() error {
			res, err := s.compute(gctx, p, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summary condenses the base scenario into headline figures with amounts
// rendered in the plan's currency.
type Summary struct {
	PlanID           uuid.UUID `json:"plan_id"`
	Name             string    `json:"name"`
	Currency         string    `json:"currency"`
	HorizonYears     int       `json:"horizon_years"`
	FirstYearRevenue string    `json:"first_year_revenue"`
	FirstYearNet     string    `json:"first_year_net_result"`
	FinalCashBalance string    `json:"final_cash_balance"`
	NPV              *string   `json:"npv"`
	IRR              *float64  `json:"irr"`
	PaybackYears     *int      `json:"payback_years"`
	BreakEvenRevenue string    `json:"break_even_revenue"`
	BreakEvenReached bool      `json:"break_even_reachable"`
}

// Summarize computes the base scenario and derives the summary.
func (s *Service) Summarize(ctx context.Context, ownerID int64, id uuid.UUID, opts engine.Options) (*Summary, error) {
	p, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	res, err := s.compute(ctx, p, opts)
	if err != nil {
		return nil, err
	}

	currency := p.Input.Project.Currency
	summary := &Summary{
		PlanID:           p.ID,
		Name:             p.Name,
		Currency:         currency,
		HorizonYears:     p.Input.Project.HorizonYears,
		BreakEvenRevenue: format.Money(currency, res.BreakEven.AggregateRevenue),
		BreakEvenReached: res.BreakEven.AggregateReachable,
	}
	if len(res.Annual) > 0 {
		summary.FirstYearRevenue = format.Money(currency, res.Annual[0].Revenue)
		summary.FirstYearNet = format.Money(currency, res.Annual[0].NetResult)
		summary.FinalCashBalance = format.Money(currency, res.Annual[len(res.Annual)-1].ClosingBalance)
	}
	if res.Viability.NPV != nil {
		npv := format.Money(currency, *res.Viability.NPV)
		summary.NPV = &npv
	}
	summary.IRR = res.Viability.IRR
	summary.PaybackYears = res.Viability.Payback

	return summary, nil
}
