package logger

import (
	"context"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

type Metrics struct {
	operationsTotal   map[string]*atomic.Int64
	operationsFailed  map[string]*atomic.Int64
	operationsLatency map[string]*atomic.Int64
	mu                sync.Mutex
}

var globalMetrics = &Metrics{
	operationsTotal:   make(map[string]*atomic.Int64),
	operationsFailed:  make(map[string]*atomic.Int64),
	operationsLatency: make(map[string]*atomic.Int64),
}

type OperationStats struct {
	Total        int64
	Failed       int64
	AvgLatencyMs float64
}

func counter(m map[string]*atomic.Int64, operation string) *atomic.Int64 {
	c, ok := m[operation]
	if !ok {
		c = &atomic.Int64{}
		m[operation] = c
	}
	return c
}

func RecordOperation(operation string, err error, duration time.Duration) {
	globalMetrics.mu.Lock()
	total := counter(globalMetrics.operationsTotal, operation)
	latency := counter(globalMetrics.operationsLatency, operation)
	var failed *atomic.Int64
	if err != nil {
		failed = counter(globalMetrics.operationsFailed, operation)
	}
	globalMetrics.mu.Unlock()

	total.Add(1)
	latency.Add(duration.Nanoseconds())
	if failed != nil {
		failed.Add(1)
	}
}

func GetMetrics() map[string]OperationStats {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()

	result := make(map[string]OperationStats)
	for op, total := range globalMetrics.operationsTotal {
		stats := OperationStats{
			Total: total.Load(),
		}
		if failed, ok := globalMetrics.operationsFailed[op]; ok {
			stats.Failed = failed.Load()
		}
		if latency, ok := globalMetrics.operationsLatency[op]; ok {
			count := total.Load()
			if count > 0 {
				stats.AvgLatencyMs = float64(latency.Load()) / float64(count) / 1e6
			}
		}
		result[op] = stats
	}
	return result
}

// LogMetrics writes one line per recorded operation, sorted by name.
func LogMetrics(ctx context.Context) {
	stats := GetMetrics()
	log := FromContext(ctx)
	for _, op := range slices.Sorted(maps.Keys(stats)) {
		s := stats[op]
		log.Info("operation stats", "operation", op, "total", s.Total, "failed", s.Failed, "avg_latency_ms", s.AvgLatencyMs)
	}
}

// TimedOperation runs fn, records its outcome and logs failures at error level.
func TimedOperation(ctx context.Context, operation string, fn func() error) error {
	start := time.Now()
	log := FromContext(WithOperation(ctx, operation))
	log.Debug("starting operation")

	err := fn()
	duration := time.Since(start)

	RecordOperation(operation, err, duration)

	if err != nil {
		log.Error("operation failed", "error", err, "duration", duration)
	} else {
		log.Debug("operation completed", "duration", duration)
	}

	return err
}

func ResetMetrics() {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()
	globalMetrics.operationsTotal = make(map[string]*atomic.Int64)
	globalMetrics.operationsFailed = make(map[string]*atomic.Int64)
	globalMetrics.operationsLatency = make(map[string]*atomic.Int64)
}
