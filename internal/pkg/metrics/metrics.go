package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
// nil の *Metrics に対する記録メソッドは何もしない
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// チケット購入の試行数（tier, status: success, sold_out, insufficient_payment, error）
	TicketPurchasesTotal *prometheus.CounterVec

	// 精算の試行数（kind: refund/payout, status: success/failed）
	SettlementsTotal *prometheus.CounterVec

	// 預かり残高
	EscrowBalance prometheus.Gauge

	// 操作ロックの取得時間（status: success/failed）
	OperationLockDuration *prometheus.HistogramVec

	// 送金の配信結果（status: sent/retry/failed）
	TransfersDispatchedTotal *prometheus.CounterVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		TicketPurchasesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_purchases_total",
				Help: "Total number of ticket purchase attempts",
			},
			[]string{"tier", "status"},
		),
		SettlementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlements_total",
				Help: "Total number of refund and payout attempts",
			},
			[]string{"kind", "status"},
		),
		EscrowBalance: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "escrow_balance",
				Help: "Value currently held in escrow",
			},
		),
		OperationLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "operation_lock_duration_seconds",
				Help:    "Time spent acquiring the operation lock",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"status"},
		),
		TransfersDispatchedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transfers_dispatched_total",
				Help: "Total number of transfer delivery attempts",
			},
			[]string{"status"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TicketPurchasesTotal,
		m.SettlementsTotal,
		m.EscrowBalance,
		m.OperationLockDuration,
		m.TransfersDispatchedTotal,
	)

	return m
}

// TicketPurchase はチケット購入の結果を記録する
func (m *Metrics) TicketPurchase(tier, status string) {
	if m == nil {
		return
	}
	m.TicketPurchasesTotal.WithLabelValues(tier, status).Inc()
}

// Settlement は精算の結果を記録する
func (m *Metrics) Settlement(kind, status string) {
	if m == nil {
		return
	}
	m.SettlementsTotal.WithLabelValues(kind, status).Inc()
}

// SetEscrowBalance は預かり残高を記録する
func (m *Metrics) SetEscrowBalance(balance int64) {
	if m == nil {
		return
	}
	m.EscrowBalance.Set(float64(balance))
}

// LockAcquired はロック取得時間を記録する
func (m *Metrics) LockAcquired(start time.Time, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failed"
	}
	m.OperationLockDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

// TransferDispatched は送金配信の結果を記録する
func (m *Metrics) TransferDispatched(status string) {
	if m == nil {
		return
	}
	m.TransfersDispatchedTotal.WithLabelValues(status).Inc()
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
