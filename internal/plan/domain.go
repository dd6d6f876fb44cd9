// Package plan persists financial plans and serves their computed projections.
package plan

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/planviva/planviva/internal/engine"
)

// Sentinel errors for the plan module.
var (
	ErrNotFound  = errors.New("plan: not found")
	ErrNameTaken = errors.New("plan: name already in use")
)

// Plan is a stored financial plan. The full assumption set lives in Input
// and is snapshotted on every update so past results stay reproducible.
type Plan struct {
	ID        uuid.UUID    `json:"id"`
	OwnerID   int64        `json:"owner_id"`
	Name      string       `json:"name"`
	Input     engine.Input `json:"input"`
	Revision  int          `json:"revision"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Revision is a historical snapshot of a plan's assumptions.
type Revision struct {
	PlanID    uuid.UUID    `json:"plan_id"`
	Revision  int          `json:"revision"`
	Input     engine.Input `json:"input"`
	CreatedAt time.Time    `json:"created_at"`
}
