package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ToolCalls счетчик вызовов инструментов
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_calls_total",
			Help: "Общее количество вызовов инструментов",
		},
		[]string{"tool_name", "status"},
	)

	// CalculationErrors счетчик ошибок расчетов
	CalculationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calculation_errors_total",
			Help: "Количество ошибок расчетов",
		},
		[]string{"tool_name", "error_type"},
	)

	// APICalls счетчик вызовов API
	APICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_calls_total",
			Help: "Вызовы API",
		},
		[]string{"service", "endpoint", "status"},
	)

	// Computations счетчик расчетов рентабельности по статусу
	Computations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentability_computations_total",
			Help: "Количество расчетов рентабельности",
		},
		[]string{"status"},
	)

	// Warnings счетчик предупреждений расчета по коду
	Warnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentability_warnings_total",
			Help: "Предупреждения расчета рентабельности",
		},
		[]string{"code"},
	)

	// CacheHits счетчик обращений к кэшу результатов
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentability_cache_lookups_total",
			Help: "Обращения к кэшу результатов",
		},
		[]string{"result"},
	)

	// IrrIterations распределение числа итераций решателя IRR
	IrrIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rentability_irr_iterations",
			Help:    "Число итераций решателя IRR",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
		},
	)

	// ComputeDuration время расчета
	ComputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rentability_compute_duration_seconds",
			Help:    "Длительность расчета рентабельности",
			Buckets: prometheus.DefBuckets,
		},
	)
)
