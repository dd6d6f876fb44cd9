package jobs

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	_ "github.com/planviva/planviva/testing"
)

func TestJobsHealthWithoutInspector(t *testing.T) {
	h := NewHandler(nil, nil, slog.Default())
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"queue":"default","pending":0}`, rec.Body.String())
}

func TestTriggerWarmupWithoutClient(t *testing.T) {
	h := NewHandler(nil, nil, slog.Default())

	rec := httptest.NewRecorder()
	h.TriggerWarmup(rec, httptest.NewRequest(http.MethodPost, "/jobs/warmup", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTriggerWarmupRejectsMalformedPayload(t *testing.T) {
	h := NewHandler(nil, &Client{}, slog.Default())

	req := httptest.NewRequest(http.MethodPost, "/jobs/warmup", strings.NewReader(`{"limit":`))
	rec := httptest.NewRecorder()
	h.TriggerWarmup(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
