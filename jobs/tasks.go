package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPlanWarmup precomputes base scenario results for recent plans.
	TaskPlanWarmup = "plan:warmup"
)

// PlanWarmupPayload bounds how many plans one warmup run touches and which
// discount rate the precomputed base scenario uses.
type PlanWarmupPayload struct {
	Limit        int     `json:"limit"`
	DiscountRate float64 `json:"discount_rate"`
}

// NewPlanWarmupTask constructs an Asynq task.
func NewPlanWarmupTask(payload PlanWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPlanWarmup, data), nil
}
