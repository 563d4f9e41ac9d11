package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog-svc/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetTraceID_NoSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("Expected empty trace id, got %q", id)
	}
}

func TestLoggerMiddleware_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggerMiddleware(logger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/bad", "/boom"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("Expected 3 log entries, got %d", len(entries))
	}
	want := []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != want[i] {
			t.Errorf("entry %d: expected level %s, got %s", i, want[i], e.Level)
		}
		if e.ContextMap()["route"] == "" {
			t.Errorf("entry %d: expected route field", i)
		}
	}
}

func TestMetricsMiddleware_LabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(MetricsMiddleware())
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := httpRequestsTotal.WithLabelValues("GET", "/items/:id", "200")
	before := testutil.ToFloat64(counter)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/items/1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/items/2", nil))

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("Expected 2 requests recorded under route label, got %v", got)
	}

	unmatched := httpRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404")
	before = testutil.ToFloat64(unmatched)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/nowhere", nil))
	if got := testutil.ToFloat64(unmatched) - before; got != 1 {
		t.Errorf("Expected unmatched request recorded, got %v", got)
	}
}

func TestRecordSeedInserted(t *testing.T) {
	before := testutil.ToFloat64(seedRecordsInserted.WithLabelValues("Products"))
	RecordSeedInserted("Products", 2)
	if got := testutil.ToFloat64(seedRecordsInserted.WithLabelValues("Products")) - before; got != 2 {
		t.Errorf("Expected 2, got %v", got)
	}
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing("catalog-service", config.Tracing{Enabled: false})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	shutdown()
}
