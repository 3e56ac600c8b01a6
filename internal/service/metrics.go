// 文件路径: internal/service/metrics.go
// 模块说明: 订单状态流转相关的 Prometheus 指标。
package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts order transitions. A nil *Metrics is valid and records nothing.
type Metrics struct {
	transitions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	cacheLookup *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg. A nil reg keeps them unregistered.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "orderdesk"
	}
	factory := promauto.With(reg)
	return &Metrics{
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "transitions_total",
			Help:      "Order status transitions persisted, by action and target stage.",
		}, []string{"action", "to"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "transition_failures_total",
			Help:      "Order status writes rejected by the store.",
		}, []string{"action"}),
		cacheLookup: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "cache_lookups_total",
			Help:      "Analytics ranking cache lookups by result.",
		}, []string{"ranking", "result"}),
	}
}

func (m *Metrics) transition(action, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(action, to).Inc()
}

func (m *Metrics) failure(action string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(action).Inc()
}

func (m *Metrics) cache(ranking string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookup.WithLabelValues(ranking, result).Inc()
}
