package pool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tasksEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "epicycle_pool_tasks_enqueued_total",
		Help: "The total number of tasks submitted to the thread pool",
	})
	poolResizes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "epicycle_pool_resizes_total",
		Help: "The total number of times the thread pool was resized",
	})
	poolSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "epicycle_pool_workers",
		Help: "The current number of workers in the thread pool",
	})
	transformsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epicycle_pool_transforms_total",
			Help: "The total number of parallel transforms executed",
		},
		[]string{"status"},
	)
	transformDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "epicycle_pool_transform_duration_seconds",
		Help: "The duration of parallel transforms in seconds",
	})
)
