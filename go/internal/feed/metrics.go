package feed

import (
	"context"
	"sync"
	"time"
)

// MetricsCollector records publish outcomes.
type MetricsCollector interface {
	RecordPublish(eventType string, success bool, duration time.Duration, err error)
}

// MetricPublisher wraps a Publisher with metrics collection.
type MetricPublisher struct {
	publisher Publisher
	metrics   MetricsCollector
}

func NewMetricPublisher(publisher Publisher, metrics MetricsCollector) *MetricPublisher {
	return &MetricPublisher{
		publisher: publisher,
		metrics:   metrics,
	}
}

func (p *MetricPublisher) Publish(ctx context.Context, event MatchEvent) error {
	start := time.Now()

	err := p.publisher.Publish(ctx, event)

	p.metrics.RecordPublish(event.Type, err == nil, time.Since(start), err)
	return err
}

// Stats is a point-in-time copy of the feed counters.
type Stats struct {
	Published     uint64            `json:"published"`
	Failed        uint64            `json:"failed"`
	ByType        map[string]uint64 `json:"by_type"`
	LastEventTime time.Time         `json:"last_event_time"`
	LastError     string            `json:"last_error,omitempty"`
	MaxLatency    time.Duration     `json:"max_latency_ns"`
}

// StatsCollector keeps in-memory counters.
type StatsCollector struct {
	mu    sync.Mutex
	stats Stats
}

func NewStatsCollector() *StatsCollector {
	return &StatsCollector{stats: Stats{ByType: make(map[string]uint64)}}
}

func (c *StatsCollector) RecordPublish(eventType string, success bool, duration time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !success {
		c.stats.Failed++
		if err != nil {
			c.stats.LastError = err.Error()
		}
		return
	}
	c.stats.Published++
	c.stats.ByType[eventType]++
	c.stats.LastEventTime = time.Now()
	c.stats.MaxLatency = max(c.stats.MaxLatency, duration)
}

// Snapshot copies the current counters.
func (c *StatsCollector) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.stats
	out.ByType = make(map[string]uint64, len(c.stats.ByType))
	for k, v := range c.stats.ByType {
		out.ByType[k] = v
	}
	return out
}
