// Package monitor measures AI operations and aggregates process-wide metrics.
package monitor

import (
	"sync"
	"time"
)

// Stats is a point-in-time snapshot of the metrics.
type Stats struct {
	TotalRequests              int64   `json:"total_requests"`
	SuccessfulRequests         int64   `json:"successful_requests"`
	FailedRequests             int64   `json:"failed_requests"`
	SuccessRatePercent         float64 `json:"success_rate_percent"`
	TotalTokensUsed            int64   `json:"total_tokens_used"`
	TotalCostEstimateUSD       float64 `json:"total_cost_estimate_usd"`
	CacheHits                  int64   `json:"cache_hits"`
	CacheMisses                int64   `json:"cache_misses"`
	CacheHitRatePercent        float64 `json:"cache_hit_rate_percent"`
	AverageResponseTimeSeconds float64 `json:"average_response_time_seconds"`
}

// Metrics accumulates counters over the process lifetime. It is constructed
// once at startup and injected; the mutex guards the whole
// counter-update-and-append step.
type Metrics struct {
	mu                 sync.Mutex
	totalRequests      int64
	successfulRequests int64
	failedRequests     int64
	totalTokensUsed    int64
	totalCostEstimate  float64
	cacheHits          int64
	cacheMisses        int64
	responseTimes      []time.Duration
}

// NewMetrics returns zeroed metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Record commits exactly one completed operation. Every operation counts one
// of successful/failed and one of hit/miss, so the pair sums always equal
// totalRequests.
func (m *Metrics) Record(success bool, tokens int, responseTime time.Duration, costEstimate float64, cacheHit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalRequests++
	if success {
		m.successfulRequests++
	} else {
		m.failedRequests++
	}

	m.totalTokensUsed += int64(tokens)
	m.totalCostEstimate += costEstimate

	if cacheHit {
		m.cacheHits++
	} else {
		m.cacheMisses++
	}

	m.responseTimes = append(m.responseTimes, responseTime)
}

// Snapshot returns the current stats.
func (m *Metrics) Snapshot() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{
		TotalRequests:        m.totalRequests,
		SuccessfulRequests:   m.successfulRequests,
		FailedRequests:       m.failedRequests,
		TotalTokensUsed:      m.totalTokensUsed,
		TotalCostEstimateUSD: m.totalCostEstimate,
		CacheHits:            m.cacheHits,
		CacheMisses:          m.cacheMisses,
	}

	if m.totalRequests > 0 {
		s.SuccessRatePercent = float64(m.successfulRequests) / float64(m.totalRequests) * 100
	}
	if lookups := m.cacheHits + m.cacheMisses; lookups > 0 {
		s.CacheHitRatePercent = float64(m.cacheHits) / float64(lookups) * 100
	}
	if len(m.responseTimes) > 0 {
		var total time.Duration
		for _, rt := range m.responseTimes {
			total += rt
		}
		s.AverageResponseTimeSeconds = (total / time.Duration(len(m.responseTimes))).Seconds()
	}

	return s
}

// Reset zeroes all counters. Test isolation only.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalRequests = 0
	m.successfulRequests = 0
	m.failedRequests = 0
	m.totalTokensUsed = 0
	m.totalCostEstimate = 0
	m.cacheHits = 0
	m.cacheMisses = 0
	m.responseTimes = nil
}
