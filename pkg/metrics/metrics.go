// Package metrics 提供 Prometheus 指标定义与暴露
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// Metrics 指标集合；nil 接收者上的记录方法均为空操作
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec
	// gRPC 请求计数
	GRPCRequestsTotal *prometheus.CounterVec

	// 业务指标
	OrdersTotal          *prometheus.CounterVec
	OrderAmount          prometheus.Histogram
	OrderRejectionsTotal *prometheus.CounterVec
	CartOperationsTotal  *prometheus.CounterVec
	CacheRequestsTotal   *prometheus.CounterVec
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		GRPCRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "grpc_requests_total",
			Help:      "Total gRPC requests",
		}, []string{"method", "code"}),

		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "orders_total",
			Help:      "Total orders placed",
		}, []string{"channel"}),
		OrderAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "order_amount",
			Help:      "Order totals",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 5000},
		}),
		OrderRejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "order_rejections_total",
			Help:      "Orders rejected, by error kind",
		}, []string{"kind"}),
		CartOperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "cart_operations_total",
			Help:      "Cart mutations",
		}, []string{"op"}),
		CacheRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "cache_requests_total",
			Help:      "Product cache lookups",
		}, []string{"result"}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GRPCRequestsTotal,
		m.OrdersTotal,
		m.OrderAmount,
		m.OrderRejectionsTotal,
		m.CartOperationsTotal,
		m.CacheRequestsTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("failed to register metric: %w", err)
		}
	}
	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// RecordGRPCRequest 记录 gRPC 请求
func (m *Metrics) RecordGRPCRequest(method, code string) {
	if m == nil {
		return
	}
	m.GRPCRequestsTotal.WithLabelValues(method, code).Inc()
}

// RecordOrder 记录成功下单
func (m *Metrics) RecordOrder(guest bool, amount float64) {
	if m == nil {
		return
	}
	channel := "user"
	if guest {
		channel = "guest"
	}
	m.OrdersTotal.WithLabelValues(channel).Inc()
	m.OrderAmount.Observe(amount)
}

// RecordOrderRejected 记录下单失败
func (m *Metrics) RecordOrderRejected(kind string) {
	if m == nil {
		return
	}
	m.OrderRejectionsTotal.WithLabelValues(kind).Inc()
}

// RecordCartOperation 记录购物车操作
func (m *Metrics) RecordCartOperation(op string) {
	if m == nil {
		return
	}
	m.CartOperationsTotal.WithLabelValues(op).Inc()
}

// RecordCache 记录缓存命中情况
func (m *Metrics) RecordCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequestsTotal.WithLabelValues(result).Inc()
}

// StartHTTPServer 启动 Prometheus HTTP 服务器，返回的 server 由调用方负责关闭
func StartHTTPServer(port int, path string, gatherer prometheus.Gatherer) *http.Server {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", srv.Addr, "path", path)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "Prometheus HTTP server failed", "error", err)
		}
	}()
	return srv
}
