package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestGinMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/companies/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	before := testutil.ToFloat64(httpMetrics.total.WithLabelValues(http.MethodGet, "/companies/:id", "404"))
	for i := 0; i < 2; i++ {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/companies/7", nil))
	}
	after := testutil.ToFloat64(httpMetrics.total.WithLabelValues(http.MethodGet, "/companies/:id", "404"))

	if after-before != 2 {
		t.Fatalf("requests_total grew by %v, want 2", after-before)
	}
	if got := testutil.ToFloat64(httpMetrics.inFlight); got != 0 {
		t.Fatalf("in_flight_requests = %v, want 0", got)
	}
}

func TestGinMiddlewareFoldsUnmatchedPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware())

	before := testutil.ToFloat64(httpMetrics.total.WithLabelValues(http.MethodGet, unmatchedRoute, "404"))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/2", nil))
	after := testutil.ToFloat64(httpMetrics.total.WithLabelValues(http.MethodGet, unmatchedRoute, "404"))

	if after-before != 2 {
		t.Fatalf("unmatched requests grew by %v, want 2", after-before)
	}
}

func TestAsynqMetricsMiddlewareCountsFailures(t *testing.T) {
	const taskType = "test:failing"
	handler := AsynqMetricsMiddleware()(asynq.HandlerFunc(func(context.Context, *asynq.Task) error {
		return errors.New("boom")
	}))

	if err := handler.ProcessTask(context.Background(), asynq.NewTask(taskType, nil)); err == nil {
		t.Fatal("expected handler error to propagate")
	}
	if got := testutil.ToFloat64(taskFailedTotal.WithLabelValues(taskType)); got != 1 {
		t.Fatalf("tasks_failed_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(taskInProgress.WithLabelValues(taskType)); got != 0 {
		t.Fatalf("tasks_in_progress = %v, want 0", got)
	}
}
