// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// 生成指标
	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	retriesTotal       *prometheus.CounterVec
	rateLimitWait      prometheus.Histogram

	// 批处理指标
	batchItemsTotal *prometheus.CounterVec

	// Agent 指标
	agentIntentsTotal *prometheus.CounterVec
	chainStepsTotal   *prometheus.CounterVec

	// 会话存储指标
	storeOpsTotal   *prometheus.CounterVec
	storeOpDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector registers the collectors under namespace with the default
// registry.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Total number of image generation runs",
		},
		[]string{"provider", "status"},
	)

	c.generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Image generation duration in seconds, admission to persisted file",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"provider", "status"},
	)

	c.retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_retries_total",
			Help:      "Total number of provider call retries",
		},
		[]string{"provider"},
	)

	c.rateLimitWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rate_limit_wait_seconds",
			Help:      "Time spent waiting for a rate limiter admission",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	c.batchItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Total number of batch items by dispatch mode",
		},
		[]string{"mode", "status"},
	)

	c.agentIntentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_intents_total",
			Help:      "Total number of routed agent messages by intent",
		},
		[]string{"intent"},
	)

	c.chainStepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chain_steps_total",
			Help:      "Total number of tool chain steps",
		},
		[]string{"tool", "status"},
	)

	c.storeOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_store_operations_total",
			Help:      "Total number of session store operations",
		},
		[]string{"backend", "operation", "status"},
	)

	c.storeOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_store_operation_duration_seconds",
			Help:      "Session store operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	c.logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 指标记录
// =============================================================================

// RecordGeneration 记录一次生成
func (c *Collector) RecordGeneration(provider, status string, duration time.Duration) {
	c.generationsTotal.WithLabelValues(provider, status).Inc()
	c.generationDuration.WithLabelValues(provider, status).Observe(duration.Seconds())
}

// RecordRetry 记录一次重试
func (c *Collector) RecordRetry(provider string) {
	c.retriesTotal.WithLabelValues(provider).Inc()
}

// RecordRateLimitWait 记录限流等待时间
func (c *Collector) RecordRateLimitWait(wait time.Duration) {
	c.rateLimitWait.Observe(wait.Seconds())
}

// RecordBatchItem 记录批处理单项结果
func (c *Collector) RecordBatchItem(mode, status string) {
	c.batchItemsTotal.WithLabelValues(mode, status).Inc()
}

// RecordAgentIntent records the route a chat message took.
func (c *Collector) RecordAgentIntent(intent string) {
	c.agentIntentsTotal.WithLabelValues(intent).Inc()
}

// RecordChainStep records one tool chain step. Skipped steps use status
// "skipped".
func (c *Collector) RecordChainStep(tool, status string) {
	c.chainStepsTotal.WithLabelValues(tool, status).Inc()
}

// RecordStoreOperation records one session store call.
func (c *Collector) RecordStoreOperation(backend, operation string, err error, duration time.Duration) {
	c.storeOpsTotal.WithLabelValues(backend, operation, Status(err)).Inc()
	c.storeOpDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// Handler returns the /metrics handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Status maps an error to a status label.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
