package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "campi"

// PoolMetrics exports worker pool activity. It implements pool.Observer.
type PoolMetrics struct {
	TasksSubmitted prometheus.Counter
	TasksCompleted prometheus.Counter
	TasksFailed    prometheus.Counter
	TasksRejected  prometheus.Counter
	BusyWorkers    prometheus.Gauge
	TaskDuration   prometheus.Histogram
}

func NewPoolMetrics() *PoolMetrics {
	return &PoolMetrics{
		TasksSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "tasks_submitted_total",
			Help:      "Tasks accepted by the pool.",
		}),
		TasksCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "tasks_completed_total",
			Help:      "Tasks that ran to completion.",
		}),
		TasksFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "tasks_failed_total",
			Help:      "Tasks that terminated abnormally and were contained.",
		}),
		TasksRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "tasks_rejected_total",
			Help:      "Tasks rejected because the pool was shutting down.",
		}),
		BusyWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "busy_workers",
			Help:      "Workers currently running a task.",
		}),
		TaskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "task_duration_seconds",
			Help:      "Time spent running a task.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *PoolMetrics) TaskSubmitted() { m.TasksSubmitted.Inc() }

func (m *PoolMetrics) TaskRejected() { m.TasksRejected.Inc() }

func (m *PoolMetrics) TaskStarted(int) { m.BusyWorkers.Inc() }

func (m *PoolMetrics) TaskFinished(_ int, elapsed time.Duration, failed bool) {
	m.BusyWorkers.Dec()
	m.TaskDuration.Observe(elapsed.Seconds())
	if failed {
		m.TasksFailed.Inc()
		return
	}
	m.TasksCompleted.Inc()
}

func (m *PoolMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.TasksSubmitted,
		m.TasksCompleted,
		m.TasksFailed,
		m.TasksRejected,
		m.BusyWorkers,
		m.TaskDuration,
	}
}

// NewRegistry returns a registry holding the pool metrics plus the Go
// runtime and process collectors.
func NewRegistry(m *PoolMetrics) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	cs := append(m.Collectors(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
