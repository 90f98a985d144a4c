package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 自定义业务指标
type AppMetrics struct {
	FrameBuildTotal   *prometheus.CounterVec // labels: dialect=diy|music|scene_speed|scene_activate|multi
	CloudRequestTotal *prometheus.CounterVec // labels: endpoint, result=ok|error
	CloudRateWaits    prometheus.Counter     // 云端限流等待次数
	PtRealSentTotal   *prometheus.CounterVec // labels: result=ok|error
	SceneCacheHits    prometheus.Counter     // 场景库缓存命中
	SceneCacheMisses  prometheus.Counter     // 场景库缓存未命中
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		FrameBuildTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ble_frame_build_total",
			Help: "BLE frames built by dialect.",
		}, []string{"dialect"}),
		CloudRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloud_request_total",
			Help: "Govee OpenAPI requests by endpoint and result.",
		}, []string{"endpoint", "result"}),
		CloudRateWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cloud_rate_limit_waits_total",
			Help: "Times a cloud request blocked on the client rate limiter.",
		}),
		PtRealSentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ptreal_publish_total",
			Help: "ptReal passthrough publishes by result.",
		}, []string{"result"}),
		SceneCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scene_cache_hits_total",
			Help: "Scene catalog cache hits.",
		}),
		SceneCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scene_cache_misses_total",
			Help: "Scene catalog cache misses.",
		}),
	}
	reg.MustRegister(m.FrameBuildTotal, m.CloudRequestTotal, m.CloudRateWaits, m.PtRealSentTotal, m.SceneCacheHits, m.SceneCacheMisses)
	return m
}
