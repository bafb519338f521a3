// Package metrics 提供 Prometheus 监控指标
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry 应用专属的指标注册表
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// HTTP 请求指标
var (
	httpRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "callplan",
		Name:      "http_requests_total",
		Help:      "HTTP请求总数",
	}, []string{"method", "path", "status"})

	httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "callplan",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP请求延迟",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
	}, []string{"method", "path"})
)

// 排班计算指标
var (
	// PlanComputationsTotal 排班计算次数
	PlanComputationsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "callplan",
		Name:      "plan_computations_total",
		Help:      "排班计算次数",
	}, []string{"day_type", "status"})

	// PlanComputationDuration 排班计算延迟
	PlanComputationDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: "callplan",
		Name:      "plan_computation_duration_seconds",
		Help:      "排班计算延迟",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
	})

	// OperatorsAssigned 最近一次计算分配的坐席总数
	OperatorsAssigned = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "callplan",
		Name:      "operators_assigned_total",
		Help:      "最近一次计算分配的坐席总数",
	})

	// UnmetDemand 最近一次计算中超出编制而放弃的需求
	UnmetDemand = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "callplan",
		Name:      "unmet_demand_total",
		Help:      "最近一次计算中超出编制而放弃的坐席需求",
	})

	// ExportsTotal 导出次数
	ExportsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "callplan",
		Name:      "exports_total",
		Help:      "报表导出次数",
	}, []string{"status"})

	// MaterializeRunsTotal 定时物化任务执行次数
	MaterializeRunsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "callplan",
		Name:      "materialize_runs_total",
		Help:      "定时物化任务执行次数",
	}, []string{"status"})
)

// 数据库指标
var (
	dbQueriesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "callplan",
		Name:      "db_queries_total",
		Help:      "数据库语句执行次数",
	}, []string{"op", "status"})

	dbQueryDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "callplan",
		Name:      "db_query_duration_seconds",
		Help:      "数据库语句执行延迟",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"op"})
)

// RecordDBQuery 记录一次数据库语句执行
func RecordDBQuery(op string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	dbQueriesTotal.WithLabelValues(op, status).Inc()
	dbQueryDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordRequestMetrics 记录一次HTTP请求
func RecordRequestMetrics(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, httpStatusLabel(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordPlanComputation 记录一次排班计算
func RecordPlanComputation(dayType string, assigned, unmet int, duration time.Duration) {
	PlanComputationsTotal.WithLabelValues(dayType, "ok").Inc()
	PlanComputationDuration.Observe(duration.Seconds())
	OperatorsAssigned.Set(float64(assigned))
	UnmetDemand.Set(float64(unmet))
}

// Handler 返回指标HTTP处理器
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// httpStatusLabel 将状态码归并为指标标签
func httpStatusLabel(status int) string {
	switch {
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
