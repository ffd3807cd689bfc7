package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedRoute 是未命中任何路由的请求使用的 path 标签，避免原始 URL 撑爆基数。
const unmatchedRoute = "unmatched"

var httpLabels = []string{"method", "route", "status"}

type httpCollectors struct {
	duration  *prometheus.HistogramVec
	total     *prometheus.CounterVec
	bodyBytes *prometheus.HistogramVec
	inFlight  prometheus.Gauge
}

func newHTTPCollectors() *httpCollectors {
	return &httpCollectors{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jobboard",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "按路由模板统计的请求耗时（秒）。",
			Buckets:   prometheus.DefBuckets,
		}, httpLabels),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobboard",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "已完成的请求数。",
		}, httpLabels),
		bodyBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jobboard",
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "响应体大小（字节）。",
			Buckets:   prometheus.ExponentialBuckets(128, 4, 7),
		}, httpLabels),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "jobboard",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "正在处理中的请求数。",
		}),
	}
}

func (m *httpCollectors) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.duration, m.total, m.bodyBytes, m.inFlight}
}

var (
	httpMetrics  = newHTTPCollectors()
	registerHTTP sync.Once
)

func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}

// GinMiddleware 按 method/路由模板/状态码 记录请求指标，首次调用时注册到默认 registry。
func GinMiddleware() gin.HandlerFunc {
	registerHTTP.Do(func() {
		prometheus.MustRegister(httpMetrics.collectors()...)
	})

	return func(c *gin.Context) {
		httpMetrics.inFlight.Inc()
		start := time.Now()

		c.Next()

		httpMetrics.inFlight.Dec()
		labels := []string{c.Request.Method, routeLabel(c), strconv.Itoa(c.Writer.Status())}
		httpMetrics.duration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		httpMetrics.total.WithLabelValues(labels...).Inc()
		httpMetrics.bodyBytes.WithLabelValues(labels...).Observe(float64(max(c.Writer.Size(), 0)))
	}
}
