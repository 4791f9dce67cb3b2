package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("test_%d", seq)
}

// =============================================================================
// Collector tests
// =============================================================================

func TestNewCollector(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.generationsTotal)
	assert.NotNil(t, collector.generationDuration)
	assert.NotNil(t, collector.retriesTotal)
	assert.NotNil(t, collector.rateLimitWait)
	assert.NotNil(t, collector.batchItemsTotal)
	assert.NotNil(t, collector.agentIntentsTotal)
	assert.NotNil(t, collector.chainStepsTotal)
	assert.NotNil(t, collector.storeOpsTotal)
}

func TestCollector_RecordGeneration(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), nil)

	collector.RecordGeneration("openrouter", "success", 2*time.Second)
	collector.RecordGeneration("openrouter", "success", time.Second)
	collector.RecordGeneration("openrouter", "error", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.generationsTotal.WithLabelValues("openrouter", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.generationsTotal.WithLabelValues("openrouter", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(collector.generationDuration))
}

func TestCollector_RecordRetryAndWait(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), nil)

	collector.RecordRetry("gemini")
	collector.RecordRetry("gemini")
	collector.RecordRateLimitWait(3 * time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.retriesTotal.WithLabelValues("gemini")))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.rateLimitWait))
}

func TestCollector_RecordBatchAndAgent(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), nil)

	collector.RecordBatchItem("parallel", "success")
	collector.RecordBatchItem("parallel", "error")
	collector.RecordBatchItem("sequential", "success")
	collector.RecordAgentIntent("enhance")
	collector.RecordChainStep("style_transfer", "success")
	collector.RecordChainStep("unknown", "skipped")

	assert.Equal(t, 3, testutil.CollectAndCount(collector.batchItemsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.agentIntentsTotal.WithLabelValues("enhance")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.chainStepsTotal.WithLabelValues("unknown", "skipped")))
}

func TestCollector_RecordStoreOperation(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), nil)

	collector.RecordStoreOperation("redis", "save", nil, 5*time.Millisecond)
	collector.RecordStoreOperation("redis", "load", errors.New("miss"), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.storeOpsTotal.WithLabelValues("redis", "save", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.storeOpsTotal.WithLabelValues("redis", "load", "error")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	ns := nextTestNamespace()
	collector := NewCollector(ns, nil)
	collector.RecordAgentIntent("direct")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), ns+"_agent_intents_total"))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "success", Status(nil))
	assert.Equal(t, "error", Status(errors.New("x")))
}
