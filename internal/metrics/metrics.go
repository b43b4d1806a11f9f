// Package metrics 店铺业务与 HTTP 指标，所有方法在 nil 接收者上为空操作
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 结账结果标签
const (
	OutcomeSuccess         = "success"
	OutcomeValidation      = "validation_error"
	OutcomeExternal        = "external_error"
	OutcomeInternal        = "internal_error"
	OutcomeDuplicate       = "duplicate"
	OutcomeIgnored         = "ignored"
	OutcomeSignatureFailed = "signature_invalid"
)

// Store 店铺指标
type Store struct {
	checkouts       *prometheus.CounterVec
	checkoutLatency prometheus.Histogram
	webhooks        *prometheus.CounterVec
	ordersCreated   prometheus.Counter
	orderRevenue    prometheus.Counter
	emails          *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New 在 reg 上注册指标；reg 为 nil 时返回空实现
func New(reg prometheus.Registerer) *Store {
	if reg == nil {
		return &Store{}
	}
	s := &Store{
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_checkout_sessions_total",
			Help: "Checkout session attempts by outcome.",
		}, []string{"outcome"}),
		checkoutLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_checkout_session_duration_seconds",
			Help:    "Time spent creating checkout sessions.",
			Buckets: prometheus.DefBuckets,
		}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_webhook_events_total",
			Help: "Stripe webhook deliveries by event type and outcome.",
		}, []string{"event", "outcome"}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_created_total",
			Help: "Orders materialized from paid checkout sessions.",
		}),
		orderRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_order_revenue_total",
			Help: "Sum of materialized order totals in store currency.",
		}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_order_emails_total",
			Help: "Order confirmation emails by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		s.checkouts,
		s.checkoutLatency,
		s.webhooks,
		s.ordersCreated,
		s.orderRevenue,
		s.emails,
		s.httpRequests,
		s.httpDuration,
	)
	return s
}

// ObserveCheckout 记录一次结账会话创建
func (s *Store) ObserveCheckout(outcome string, duration time.Duration) {
	if s == nil || s.checkouts == nil {
		return
	}
	s.checkouts.WithLabelValues(normalizeLabel(outcome)).Inc()
	s.checkoutLatency.Observe(duration.Seconds())
}

// IncWebhook 记录 webhook 处理结果
func (s *Store) IncWebhook(event, outcome string) {
	if s == nil || s.webhooks == nil {
		return
	}
	s.webhooks.WithLabelValues(normalizeLabel(event), normalizeLabel(outcome)).Inc()
}

// AddOrder 记录新建订单与金额
func (s *Store) AddOrder(total float64) {
	if s == nil || s.ordersCreated == nil {
		return
	}
	s.ordersCreated.Inc()
	if total > 0 {
		s.orderRevenue.Add(total)
	}
}

// IncEmail 记录确认邮件发送结果
func (s *Store) IncEmail(outcome string) {
	if s == nil || s.emails == nil {
		return
	}
	s.emails.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveHTTP 记录 HTTP 请求
func (s *Store) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if s == nil || s.httpRequests == nil {
		return
	}
	route = normalizeLabel(route)
	s.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	s.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
