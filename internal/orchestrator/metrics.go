package orchestrator

import "github.com/prometheus/client_golang/prometheus"

// Metrics собирает показатели прогонов.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec
	TasksTotal       *prometheus.CounterVec
	TaskDuration     prometheus.Histogram
	DiscoveredVideos prometheus.Histogram
	RunActive        prometheus.Gauge
	StopRequests     prometheus.Counter
}

// NewMetrics создает и регистрирует коллекторы в reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ytagent_runs_total",
				Help: "Finished automation runs, by final status.",
			},
			[]string{"status"},
		),
		TasksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ytagent_tasks_total",
				Help: "Per-video tasks, by outcome.",
			},
			[]string{"outcome"},
		),
		TaskDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ytagent_task_duration_seconds",
				Help:    "Time from opening a video tab to closing it.",
				Buckets: []float64{5, 10, 15, 20, 30, 45, 60, 120, 180},
			},
		),
		DiscoveredVideos: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ytagent_discovered_videos",
				Help:    "Video links discovered per run.",
				Buckets: prometheus.LinearBuckets(0, 5, 10),
			},
		),
		RunActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ytagent_run_active",
				Help: "1 while an automation run is active.",
			},
		),
		StopRequests: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ytagent_stop_requests_total",
				Help: "stopAutomation requests received.",
			},
		),
	}

	reg.MustRegister(
		m.RunsTotal,
		m.TasksTotal,
		m.TaskDuration,
		m.DiscoveredVideos,
		m.RunActive,
		m.StopRequests,
	)
	return m
}
