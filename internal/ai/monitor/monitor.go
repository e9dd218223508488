package monitor

import (
	"log/slog"
	"time"
)

// CostEstimator converts token usage to an estimated USD cost.
type CostEstimator interface {
	EstimateCost(model string, inputTokens, outputTokens int) float64
}

// Monitor wraps individual AI operations and commits their outcome into the
// injected Metrics.
type Monitor struct {
	metrics *Metrics
	costs   CostEstimator
}

// New creates a Monitor.
func New(metrics *Metrics, costs CostEstimator) *Monitor {
	return &Monitor{metrics: metrics, costs: costs}
}

// Metrics returns the underlying collector.
func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

// Operation tracks one in-flight AI operation. End must run on every exit
// path (defer it right after Begin); it commits exactly one metrics record.
type Operation struct {
	mon       *Monitor
	name      string
	userID    string
	model     string
	start     time.Time
	ended     bool
	inTokens  int
	outTokens int
	total     int
	cacheHit  bool
	err       error
}

// Begin starts tracking an operation. userID is used for log attribution only.
func (m *Monitor) Begin(operation, userID, model string) *Operation {
	slog.Info("starting AI operation", "operation", operation, "user", userID)
	return &Operation{
		mon:    m,
		name:   operation,
		userID: userID,
		model:  model,
		start:  time.Now(),
	}
}

// SetTokens records the token usage of the operation.
func (o *Operation) SetTokens(inputTokens, outputTokens int) {
	o.inTokens = inputTokens
	o.outTokens = outputTokens
	o.total = inputTokens + outputTokens
}

// MarkCacheHit flags the operation as served from cache.
func (o *Operation) MarkCacheHit() {
	o.cacheHit = true
}

// Fail records the operation's error. The caller still propagates it.
func (o *Operation) Fail(err error) {
	o.err = err
}

// End computes elapsed time and cost and commits the record. Idempotent.
func (o *Operation) End() {
	if o.ended {
		return
	}
	o.ended = true

	elapsed := time.Since(o.start)
	cost := o.mon.costs.EstimateCost(o.model, o.inTokens, o.outTokens)
	o.mon.metrics.Record(o.err == nil, o.total, elapsed, cost, o.cacheHit)

	if o.err == nil {
		slog.Info("AI operation completed",
			"operation", o.name,
			"user", o.userID,
			"tokens", o.total,
			"duration", elapsed.String(),
			"cost_usd", cost,
			"cache_hit", o.cacheHit)
	} else {
		slog.Error("AI operation failed",
			"operation", o.name,
			"user", o.userID,
			"duration", elapsed.String(),
			"error", o.err)
	}
}
