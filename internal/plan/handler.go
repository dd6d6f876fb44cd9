package plan

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/planviva/planviva/internal/auth"
	"github.com/planviva/planviva/internal/engine"
	"github.com/planviva/planviva/internal/platform/httpx"
)

// Handler wires HTTP endpoints for plan management and computation.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers plan routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Get("/", h.handleList)
	r.Route("/{planID}", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Put("/", h.handleUpdate)
		r.Delete("/", h.handleDelete)
		r.Get("/revisions", h.handleRevisions)
		r.Get("/results", h.handleResults)
		r.Post("/scenarios", h.handleScenarios)
		r.Get("/summary", h.handleSummary)
	})
}

type planRequest struct {
	Name  string       `json:"name" validate:"required,min=1,max=120"`
	Input engine.Input `json:"input" validate:"required"`
}

type scenariosRequest struct {
	Scenarios []engine.Options `json:"scenarios" validate:"required,min=1,max=20"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	p, err := h.service.Create(r.Context(), auth.UserIDFromContext(r.Context()), req.Name, req.Input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.List(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if plans == nil {
		plans = []Plan{}
	}
	httpx.JSON(w, http.StatusOK, plans)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.planID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(r.Context(), auth.UserIDFromContext(r.Context()), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.planID(w, r)
	if !ok {
		return
	}
	var req planRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	p, err := h.service.Update(r.Context(), auth.UserIDFromContext(r.Context()), id, req.Name, req.Input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.planID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), auth.UserIDFromContext(r.Context()), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRevisions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.planID(w, r)
	if !ok {
		return
	}
	revisions, err := h.service.Revisions(r.Context(), auth.UserIDFromContext(r.Context()), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if revisions == nil {
		revisions = []Revision{}
	}
	httpx.JSON(w, http.StatusOK, revisions)
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	id, ok := h.planID(w, r)
	if !ok {
		return
	}
	opts, ok := h.scenarioOptions(w, r)
	if !ok {
		return
	}
	result, err := h.service.Compute(r.Context(), auth.UserIDFromContext(r.Context()), id, opts)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleScenarios(w http.ResponseWriter, r *http.Request) {
	id, ok := h.planID(w, r)
	if !ok {
		return
	}
	var req scenariosRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	results, err := h.service.ComputeBatch(r.Context(), auth.UserIDFromContext(r.Context()), id, req.Scenarios)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, results)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.planID(w, r)
	if !ok {
		return
	}
	opts, ok := h.scenarioOptions(w, r)
	if !ok {
		return
	}
	summary, err := h.service.Summarize(r.Context(), auth.UserIDFromContext(r.Context()), id, opts)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) planID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Plan ID", "plan id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// scenarioOptions reads scenario knobs from the query string; absent
// parameters keep the engine defaults.
func (h *Handler) scenarioOptions(w http.ResponseWriter, r *http.Request) (engine.Options, bool) {
	var opts engine.Options
	query := r.URL.Query()
	if raw := query.Get("discount_rate"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Query", "discount_rate must be a number")
			return opts, false
		}
		opts.DiscountRate = v
	}
	if raw := query.Get("quantity_multiplier"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Query", "quantity_multiplier must be a number")
			return opts, false
		}
		opts.QuantityMultiplier = v
	}
	return opts, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var shapeErr *engine.ShapeError
	var domainErr *engine.DomainError
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "plan not found")
	case errors.Is(err, ErrNameTaken):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "a plan with this name already exists")
	case errors.As(err, &shapeErr), errors.As(err, &domainErr):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable Input", err.Error())
	default:
		h.logger.Error("plan request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
